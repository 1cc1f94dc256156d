package row

import "fmt"

// UnknownFieldError reports a stored record that is missing a column the row
// type expects. It signals a schema mismatch between the store and the code;
// retrying cannot fix it.
type UnknownFieldError struct {
	Key string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field %q in stored record", e.Key)
}

// decodeErr builds the error for a wire value of the wrong dynamic type.
func decodeErr(key string, v any, want string) error {
	return fmt.Errorf("field %q: cannot decode %T as %s", key, v, want)
}
