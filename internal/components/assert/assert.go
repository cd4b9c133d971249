package assert

func NotNil(value any) {
	if value == nil {
		panic("expected value to be not nil")
	}
}

func NotEmptyStr(str string) {
	if str == "" {
		panic("expected string to be non-empty")
	}
}

func NotEmpty[T any](list []T) {
	if len(list) == 0 {
		panic("expected list to be non-empty")
	}
}
