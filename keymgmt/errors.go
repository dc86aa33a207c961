package keymgmt

import "fmt"

// ServiceError captures normalized key-management response details.
type ServiceError struct {
	Operation string
	Status    int
	Code      string
	Message   string
	Err       error
	Raw       map[string]any
}

func (e *ServiceError) Error() string {
	if e == nil {
		return "key management error"
	}

	scope := "key management"
	if e.Operation != "" {
		scope = fmt.Sprintf("key management %s", e.Operation)
	}

	if e.Message != "" {
		return fmt.Sprintf("%s failed: %s", scope, e.Message)
	}
	if e.Code != "" {
		return fmt.Sprintf("%s failed: %s", scope, e.Code)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %v", scope, e.Err)
	}

	return fmt.Sprintf("%s failed", scope)
}

func (e *ServiceError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func serviceError(operation string, status int, code, message string, err error, raw map[string]any) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Status:    status,
		Code:      code,
		Message:   message,
		Err:       err,
		Raw:       raw,
	}
}
