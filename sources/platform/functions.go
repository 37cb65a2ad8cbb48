package platform

func Curry[T any](constructor func() T, configurator func(T)) T {
	value := constructor()
	configurator(value)
	return value
}
