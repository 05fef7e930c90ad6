package models

// Gender labels offered on the signup form. GenderUnset is stored when the
// user picks nothing.
const (
	GenderUnset  = ""
	GenderMale   = "Male"
	GenderFemale = "Female"
	GenderOther  = "Other"
)

// Genders lists the accepted gender labels in display order.
var Genders = []string{GenderUnset, GenderMale, GenderFemale, GenderOther}

// MaxAge is the largest age accepted at registration.
const MaxAge = 150

// BirthdayLayout is the storage format for birthdays.
const BirthdayLayout = "2006-01-02"

type User struct {
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Email        string `json:"email"`
	Gender       string `json:"gender"`
	Birthday     string `json:"birthday"`
	Age          int    `json:"age"`
}

// Registration carries a validated signup. Password is plaintext and must
// only ever reach the password hasher.
type Registration struct {
	Username string
	Password string
	Email    string
	Gender   string
	Birthday string
	Age      int
}

// ValidGender reports whether g is one of Genders.
func ValidGender(g string) bool {
	for _, v := range Genders {
		if v == g {
			return true
		}
	}
	return false
}
