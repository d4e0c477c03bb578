package application

import (
	"net/url"
	"strconv"

	"github.com/spf13/cast"

	"teamhood-mcp-server/internal/domain"
)

// getStringParam extracts a string argument from the arguments map.
// Returns an error if the argument is required but missing, or present
// but not usable as a string.
func getStringParam(args map[string]interface{}, name string, required bool) (string, error) {
	value, exists := args[name]
	if !exists {
		if required {
			return "", &domain.MissingArgumentError{Argument: name}
		}
		return "", nil
	}

	strValue, err := cast.ToStringE(value)
	if err != nil {
		return "", &domain.InvalidArgumentError{Argument: name, Expected: "a string"}
	}

	return strValue, nil
}

// getBoolParam extracts a boolean argument, returning fallback when
// the argument is absent.
func getBoolParam(args map[string]interface{}, name string, fallback bool) (bool, error) {
	value, exists := args[name]
	if !exists {
		return fallback, nil
	}

	boolValue, err := cast.ToBoolE(value)
	if err != nil {
		return false, &domain.InvalidArgumentError{Argument: name, Expected: "a boolean"}
	}

	return boolValue, nil
}

// setIfPresent copies an argument into an outgoing request body under
// fieldName, but only when the caller actually supplied it. Callers
// that never mention a field must not cause that field to appear in
// the API request.
func setIfPresent(body, args map[string]interface{}, argName, fieldName string) {
	if value, exists := args[argName]; exists {
		body[fieldName] = value
	}
}

// listOrEmpty returns the argument value when present and an empty
// list otherwise. Teamhood expects list-valued item fields to always
// be present on create.
func listOrEmpty(args map[string]interface{}, name string) interface{} {
	if value, exists := args[name]; exists {
		return value
	}
	return []interface{}{}
}

// addQueryString adds a string filter to the query when the caller
// provided it.
func addQueryString(q url.Values, args map[string]interface{}, argName, key string) error {
	value, exists := args[argName]
	if !exists {
		return nil
	}

	strValue, err := cast.ToStringE(value)
	if err != nil {
		return &domain.InvalidArgumentError{Argument: argName, Expected: "a string"}
	}

	q.Set(key, strValue)
	return nil
}

// addQueryInt adds a numeric filter to the query when the caller
// provided it.
func addQueryInt(q url.Values, args map[string]interface{}, argName, key string) error {
	value, exists := args[argName]
	if !exists {
		return nil
	}

	intValue, err := cast.ToIntE(value)
	if err != nil {
		return &domain.InvalidArgumentError{Argument: argName, Expected: "an integer"}
	}

	q.Set(key, strconv.Itoa(intValue))
	return nil
}

// addQueryBool adds a boolean filter to the query when the caller
// provided it.
func addQueryBool(q url.Values, args map[string]interface{}, argName, key string) error {
	value, exists := args[argName]
	if !exists {
		return nil
	}

	boolValue, err := cast.ToBoolE(value)
	if err != nil {
		return &domain.InvalidArgumentError{Argument: argName, Expected: "a boolean"}
	}

	q.Set(key, strconv.FormatBool(boolValue))
	return nil
}

// addQueryStrings adds a repeated filter to the query, one key
// occurrence per element, when the caller provided it.
func addQueryStrings(q url.Values, args map[string]interface{}, argName, key string) error {
	value, exists := args[argName]
	if !exists {
		return nil
	}

	values, err := cast.ToStringSliceE(value)
	if err != nil {
		return &domain.InvalidArgumentError{Argument: argName, Expected: "a list of strings"}
	}

	for _, v := range values {
		q.Add(key, v)
	}
	return nil
}
