package service

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is shared; a Validate caches struct metadata and is safe for concurrent use
var validate = validator.New()

// mobilePrefixes are the accepted Portuguese mobile prefixes
var mobilePrefixes = []string{"91", "92", "93", "96"}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail checks email with the same "email" rule the request binding uses
func ValidEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}

// ValidNIF checks a Portuguese tax number: nine digits, an allowed first
// digit and the mod-11 control digit.
func ValidNIF(nif string) bool {
	if len(nif) != 9 || !isDigits(nif) {
		return false
	}
	if !strings.ContainsRune("125689", rune(nif[0])) {
		return false
	}

	sum := 0
	for i := 0; i < 8; i++ {
		sum += int(nif[i]-'0') * (9 - i)
	}
	control := 11 - sum%11
	if control >= 10 {
		control = 0
	}
	return control == int(nif[8]-'0')
}

// ValidCellphone checks a nine digit Portuguese mobile number
func ValidCellphone(phone string) bool {
	if len(phone) != 9 || !isDigits(phone) {
		return false
	}
	for _, p := range mobilePrefixes {
		if strings.HasPrefix(phone, p) {
			return true
		}
	}
	return false
}

// MaskEmail hides most of the local part: "maria@x.pt" -> "ma*****@x.pt"
func MaskEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok {
		return "***"
	}
	if len(local) <= 2 {
		return "***@" + domain
	}
	return local[:2] + "*****@" + domain
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
