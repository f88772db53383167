/*
Package errors provides semantic error types for the data service.

The package defines the error taxonomy of the query translation layer with
specific types that can be checked using the standard errors.Is() function or
the provided helper functions.

Common Errors:

	var (
	    ErrNotFound              = errors.New("entity not found")
	    ErrInvalidInput          = errors.New("invalid input")
	    ErrUnsupportedKeyType    = errors.New("unsupported key type")
	    ErrUnsupportedFilterKind = errors.New("unsupported filter kind")
	    ErrUnsupportedOrderKind  = errors.New("unsupported order kind")
	    ErrUnregisteredKind      = errors.New("no kind registered for type")
	)

ErrNotFound is only ever produced by stores on point lookups. The typed
DataService swallows it and returns nil (single results) or an empty slice
(list results), so callers of the façade rarely see it.

Usage:

	item, err := session.Get(ctx, key)
	if err != nil {
	    if errors.IsNotFound(err) {
	        return nil, nil
	    }
	    return nil, err
	}

	err := errors.NewValidationError("condition", "unknown operator")
	err := errors.NewUnsupportedKeyTypeError("Person", 0)

The error types implement the error interface and support wrapping,
making them compatible with Go's standard error handling patterns.
*/
package errors
