package platform

type Language = string

const (
	LanguageUzbek   Language = "uz"
	LanguageEnglish Language = "en"
	LanguageRussian Language = "ru"
)

type ContentKind = string

const (
	ContentText     ContentKind = "text"
	ContentDocument ContentKind = "document"
	ContentAudio    ContentKind = "audio"
	ContentVideo    ContentKind = "video"
	ContentCallback ContentKind = "callback"
	ContentForward  ContentKind = "forward"
)
