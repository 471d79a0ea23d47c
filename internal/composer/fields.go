package composer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var errNotAnObject = errors.New("expected a JSON object")

// Fields is a JSON object that keeps its members raw and in their original order.
// Members nobody touches are written back byte for byte.
type Fields struct {
	keys   []string
	values map[string]json.RawMessage
}

// UnmarshalJSON decodes an object while recording key order.
func (fields *Fields) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	openingToken, tokenError := decoder.Token()
	if tokenError != nil {
		return tokenError
	}
	if delimiter, isDelimiter := openingToken.(json.Delim); !isDelimiter || delimiter != '{' {
		return errNotAnObject
	}
	*fields = Fields{}
	for decoder.More() {
		keyToken, keyError := decoder.Token()
		if keyError != nil {
			return keyError
		}
		key, isString := keyToken.(string)
		if !isString {
			return fmt.Errorf("unexpected object key %v", keyToken)
		}
		var rawValue json.RawMessage
		if decodeError := decoder.Decode(&rawValue); decodeError != nil {
			return fmt.Errorf("decode member %q: %w", key, decodeError)
		}
		fields.Set(key, rawValue)
	}
	if _, closingError := decoder.Token(); closingError != nil {
		return closingError
	}
	return nil
}

// MarshalJSON writes members in their recorded order.
func (fields Fields) MarshalJSON() ([]byte, error) {
	var buffer bytes.Buffer
	buffer.WriteByte('{')
	for index, key := range fields.keys {
		if index > 0 {
			buffer.WriteByte(',')
		}
		encodedKey, keyError := encodeValue(key)
		if keyError != nil {
			return nil, keyError
		}
		buffer.Write(encodedKey)
		buffer.WriteByte(':')
		buffer.Write(fields.values[key])
	}
	buffer.WriteByte('}')
	return buffer.Bytes(), nil
}

// Keys returns member names in order.
func (fields *Fields) Keys() []string {
	return append([]string(nil), fields.keys...)
}

// Len reports the number of members.
func (fields *Fields) Len() int {
	return len(fields.keys)
}

// Has reports whether key is present.
func (fields *Fields) Has(key string) bool {
	_, present := fields.values[key]
	return present
}

// Get returns the raw value stored under key.
func (fields *Fields) Get(key string) (json.RawMessage, bool) {
	rawValue, present := fields.values[key]
	return rawValue, present
}

// GetString decodes the member stored under key as a string.
func (fields *Fields) GetString(key string) (string, bool) {
	rawValue, present := fields.values[key]
	if !present {
		return "", false
	}
	var value string
	if decodeError := json.Unmarshal(rawValue, &value); decodeError != nil {
		return "", false
	}
	return value, true
}

// Set stores rawValue under key. Existing keys keep their position, new keys are appended.
func (fields *Fields) Set(key string, rawValue json.RawMessage) {
	if fields.values == nil {
		fields.values = make(map[string]json.RawMessage)
	}
	if _, present := fields.values[key]; !present {
		fields.keys = append(fields.keys, key)
	}
	fields.values[key] = append(json.RawMessage(nil), rawValue...)
}

// SetValue encodes value and stores it under key.
func (fields *Fields) SetValue(key string, value any) error {
	encodedValue, encodeError := encodeValue(value)
	if encodeError != nil {
		return fmt.Errorf("encode member %q: %w", key, encodeError)
	}
	fields.Set(key, encodedValue)
	return nil
}

// Delete removes key and reports whether it was present.
func (fields *Fields) Delete(key string) bool {
	if _, present := fields.values[key]; !present {
		return false
	}
	delete(fields.values, key)
	for index, existingKey := range fields.keys {
		if existingKey == key {
			fields.keys = append(fields.keys[:index], fields.keys[index+1:]...)
			break
		}
	}
	return true
}

// Rename moves the value of oldKey to newKey at the same position. A member already
// stored under newKey is replaced. Reports whether oldKey was present.
func (fields *Fields) Rename(oldKey string, newKey string) bool {
	rawValue, present := fields.values[oldKey]
	if !present {
		return false
	}
	if oldKey == newKey {
		return true
	}
	if _, collision := fields.values[newKey]; collision {
		fields.Delete(newKey)
	}
	for index, existingKey := range fields.keys {
		if existingKey == oldKey {
			fields.keys[index] = newKey
			break
		}
	}
	delete(fields.values, oldKey)
	fields.values[newKey] = rawValue
	return true
}

// encodeValue marshals value without escaping HTML characters.
func encodeValue(value any) (json.RawMessage, error) {
	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	if encodeError := encoder.Encode(value); encodeError != nil {
		return nil, encodeError
	}
	return bytes.TrimRight(buffer.Bytes(), "\n"), nil
}
