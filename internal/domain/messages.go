package domain

// Messages holds the user-facing feedback texts, one per outcome.
type Messages struct {
	Invalid    string `json:"invalid" yaml:"invalid"`
	Subscribed string `json:"subscribed" yaml:"subscribed"`
	Rejected   string `json:"rejected" yaml:"rejected"`
	Failed     string `json:"failed" yaml:"failed"`
}

// EnglishMessages is the default catalog.
var EnglishMessages = Messages{
	Invalid:    "Please enter a valid Gmail address",
	Subscribed: "Thanks for subscribing! You will receive our offers soon.",
	Rejected:   "There was an error subscribing.",
	Failed:     "There was an error subscribing. Please try again.",
}

// SpanishMessages is the catalog of the original Spanish-language widget.
var SpanishMessages = Messages{
	Invalid:    "Por favor, introduce un Gmail válido",
	Subscribed: "¡Gracias por suscribirte! Pronto recibirás nuestras ofertas.",
	Rejected:   "Hubo un error al suscribirte.",
	Failed:     "Hubo un error al suscribirte. Por favor, inténtalo de nuevo.",
}

// WithDefaults fills empty fields from EnglishMessages.
func (m Messages) WithDefaults() Messages {
	if m.Invalid == "" {
		m.Invalid = EnglishMessages.Invalid
	}
	if m.Subscribed == "" {
		m.Subscribed = EnglishMessages.Subscribed
	}
	if m.Rejected == "" {
		m.Rejected = EnglishMessages.Rejected
	}
	if m.Failed == "" {
		m.Failed = EnglishMessages.Failed
	}
	return m
}
