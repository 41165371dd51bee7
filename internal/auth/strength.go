package auth

import (
	"fmt"
	"strings"
	"unicode"
)

const MinPasswordLength = 8

// A short list of the most leaked passwords; anything here is refused
// regardless of length.
var commonPasswords = map[string]struct{}{}

func init() {
	for _, p := range strings.Fields(`
		123456 password 12345678 qwerty 123456789 12345 1234 111111 1234567 dragon
		123123 baseball abc123 football monkey letmein 696969 shadow master 666666
		qwertyuiop 123321 mustang 1234567890 michael 654321 superman 1qaz2wsx 7777777
		121212 000000 qazwsx 123qwe killer trustno1 jordan jennifer zxcvbnm asdfgh
		hunter buster soccer harley batman andrew tigger sunshine iloveyou 2000
		charlie robert thomas hockey ranger daniel starwars klaster 112233 george
		computer michelle jessica pepper 1111 zxcvbn 555555 11111111 131313 freedom
		777777 pass maggie 159753 aaaaaa ginger princess joshua cheese amanda summer
		love ashley nicole chelsea biteme matthew access yankees 987654321 dallas
		austin thunder taylor matrix password1 password123 welcome admin administrator
		passw0rd qwerty123 iloveyou1 letmein1 welcome1 football1 monkey123 abcd1234
	`) {
		commonPasswords[p] = struct{}{}
	}
}

// ValidatePassword returns the reasons password is too weak to accept, or
// nil when it passes every rule.
func ValidatePassword(password string) []string {
	var problems []string

	if len([]rune(password)) < MinPasswordLength {
		problems = append(problems, fmt.Sprintf(
			"This password is too short. It must contain at least %d characters.", MinPasswordLength))
	}
	if _, ok := commonPasswords[strings.ToLower(strings.TrimSpace(password))]; ok {
		problems = append(problems, "This password is too common.")
	}
	if password != "" && isNumeric(password) {
		problems = append(problems, "This password is entirely numeric.")
	}

	return problems
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
