package models

// Assignment is a single column update extracted from a patch. The
// store turns a patch into an ordered list of assignments, declaration
// order, so generated UPDATE statements are deterministic.
type Assignment struct {
	Column string
	Value  interface{}
}

// genders accepted for policy holders
const (
	GenderMale   = "Male"
	GenderFemale = "Female"
	GenderOther  = "Other"
)

func validGender(g string) bool {
	return g == GenderMale || g == GenderFemale || g == GenderOther
}
