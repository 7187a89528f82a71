package common

// ConstError is an error type that can be used to define immutable
// error constants, matchable with errors.Is.
type ConstError string

func (e ConstError) Error() string {
	return string(e)
}
