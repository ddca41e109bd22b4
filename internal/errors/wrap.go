package errors

import "fmt"

// Wrap prefixes err with msg, passing nil through untouched so it can
// sit on a bare return. The %w verb keeps the chain intact, so
// errors.Is still finds the sentinel underneath:
//
//	if err := loader.Load(path); err != nil {
//	    return errors.Wrap(err, "load chain file")
//	}
//
// Wrap at package boundaries only; a prefix on every return stacks up
// into unreadable messages.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf is Wrap with a format string, for prefixes that carry values:
//
//	return errors.Wrapf(err, "resolve fragment %q", name)
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
