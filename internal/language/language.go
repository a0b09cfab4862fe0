package language

import (
	"errors"
	"strings"

	"golang.org/x/text/language"
)

// ErrInvalidLanguage is returned for codes outside the supported dubbing targets.
var ErrInvalidLanguage = errors.New("unsupported target language")

// Option is a dubbing target offered to users.
type Option struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Flag string `json:"flag"`
}

// Ordered as presented in the language picker.
var options = []Option{
	{"en", "English", "🇬🇧"},
	{"de", "German", "🇩🇪"},
	{"es", "Spanish", "🇪🇸"},
	{"fr", "French", "🇫🇷"},
	{"it", "Italian", "🇮🇹"},
	{"zh", "Chinese", "🇨🇳"},
	{"hi", "Hindi", "🇮🇳"},
	{"pt", "Portuguese", "🇵🇹"},
	{"ja", "Japanese", "🇯🇵"},
	{"ar", "Arabic", "🇸🇦"},
	{"ru", "Russian", "🇷🇺"},
	{"ko", "Korean", "🇰🇷"},
	{"id", "Indonesian", "🇮🇩"},
	{"nl", "Dutch", "🇳🇱"},
	{"tr", "Turkish", "🇹🇷"},
	{"pl", "Polish", "🇵🇱"},
	{"sv", "Swedish", "🇸🇪"},
	{"fi", "Finnish", "🇫🇮"},
	{"da", "Danish", "🇩🇰"},
}

var byCode map[string]*Option

func init() {
	byCode = make(map[string]*Option, len(options))
	for i := range options {
		byCode[options[i].Code] = &options[i]
	}
}

// Options returns the supported targets in picker order.
func Options() []Option {
	return append([]Option(nil), options...)
}

// Normalize canonicalises a language tag to its base ISO 639-1 code.
// "pt-BR", "PT" and "por" all become "pt". Unparseable input yields "".
func Normalize(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	tag, err := language.Parse(code)
	if err != nil {
		return ""
	}
	base, _ := tag.Base()
	return base.String()
}

// Validate returns the normalised code when it is a supported target.
func Validate(code string) (string, error) {
	norm := Normalize(code)
	if _, ok := byCode[norm]; !ok {
		return "", ErrInvalidLanguage
	}
	return norm, nil
}

// Supported reports whether code normalises to a supported target.
func Supported(code string) bool {
	_, err := Validate(code)
	return err == nil
}

// DisplayName returns the English name for a code, or the code itself when unknown.
func DisplayName(code string) string {
	if opt, ok := byCode[Normalize(code)]; ok {
		return opt.Name
	}
	return code
}

// Lookup returns the option for a code and whether it is supported.
func Lookup(code string) (Option, bool) {
	opt, ok := byCode[Normalize(code)]
	if !ok {
		return options[0], false
	}
	return *opt, true
}
