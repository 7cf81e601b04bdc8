package allocation

import "fmt"

// categoryCodes maps the recognized contract category labels to their fixed
// two-letter codes. The set is closed: an unrecognized label is an error, not
// a defaulted code, so a typo can never mint codes under a wrong prefix.
var categoryCodes = map[string]string{
	"server maintenance":  "MS",
	"network maintenance": "NW",
	"hardware support":    "HW",
	"software support":    "SW",
	"consulting":          "CO",
}

// CategoryCode resolves a category label to its two-letter code.
func CategoryCode(label string) (string, error) {
	code, ok := categoryCodes[label]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, label)
	}
	return code, nil
}

// Categories returns the recognized category labels. Handlers use it for
// request validation messages.
func Categories() []string {
	labels := make([]string, 0, len(categoryCodes))
	for label := range categoryCodes {
		labels = append(labels, label)
	}
	return labels
}
