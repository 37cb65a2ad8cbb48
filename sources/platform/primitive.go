package platform

func BoolPtr(b bool) *bool {
	return &b
}

func BoolValue(b *bool, defaultValue bool) bool {
	if b == nil {
		return defaultValue
	}
	return *b
}

func StrPtr(s string) *string {
	return &s
}

func StrValue(s *string, defaultValue string) string {
	if s == nil {
		return defaultValue
	}
	return *s
}
