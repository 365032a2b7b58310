package serrors

// BaseError is a coded error that carries a localization key alongside a
// developer-facing message. Feature services wrap domain failures in a
// BaseError at the boundary so callers can branch on Code without string
// matching.
type BaseError struct {
	Code         string
	Message      string
	LocaleKey    string
	TemplateData map[string]string
}

func NewError(code, message, localeKey string) *BaseError {
	return &BaseError{
		Code:      code,
		Message:   message,
		LocaleKey: localeKey,
	}
}

func (e *BaseError) Error() string {
	return e.Message
}

// WithTemplateData attaches values interpolated into the localized message.
func (e *BaseError) WithTemplateData(data map[string]string) *BaseError {
	e.TemplateData = data
	return e
}

// Is reports whether target is a BaseError with the same code, so coded
// errors survive wrapping with errors.Is.
func (e *BaseError) Is(target error) bool {
	other, ok := target.(*BaseError)
	if !ok {
		return false
	}
	return other.Code == e.Code
}
