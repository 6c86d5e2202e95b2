package cloudevent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// SpecVersion is the CloudEvents version this envelope conforms to
	SpecVersion = "1.0"

	// DataContentType describes the data attribute
	DataContentType = "application/json"

	// ContentType is the structured-mode media type used on the wire
	ContentType = "application/cloudevents+json"
)

// typePattern is <prefix>.<resource>.<action>: lowercase, dot separated, at least three segments
var typePattern = regexp.MustCompile(`^[a-z0-9_]+(\.[a-z0-9_]+){2,}$`)

var prefixPattern = regexp.MustCompile(`^[a-z0-9_]+(\.[a-z0-9_]+)*$`)

// CloudEvent is the immutable envelope fanned out to every matching subscription
type CloudEvent struct {
	SpecVersion     string          `json:"specversion"`
	ID              string          `json:"id"`
	Source          string          `json:"source"`
	Type            string          `json:"type"`
	DataContentType string          `json:"datacontenttype"`
	Time            time.Time       `json:"time"`
	Data            json.RawMessage `json:"data"`
}

// New creates a CloudEvent with a fresh id and the current UTC time
func New(source, eventType string, data any) (CloudEvent, error) {
	dataBytes, err := marshalData(data)
	if err != nil {
		return CloudEvent{}, fmt.Errorf("marshaling data: %w", err)
	}

	event := CloudEvent{
		SpecVersion:     SpecVersion,
		ID:              uuid.NewString(),
		Source:          source,
		Type:            eventType,
		DataContentType: DataContentType,
		Time:            time.Now().UTC(),
		Data:            dataBytes,
	}

	if err := event.Validate(); err != nil {
		return CloudEvent{}, fmt.Errorf("validating event: %w", err)
	}

	return event, nil
}

func marshalData(data any) (json.RawMessage, error) {
	if raw, ok := data.(json.RawMessage); ok {
		return raw, nil
	}
	if data == nil {
		return json.RawMessage(`{}`), nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Validate checks the required CloudEvents attributes
func (e CloudEvent) Validate() error {
	if e.SpecVersion != SpecVersion {
		return fmt.Errorf("specversion must be %s: %q", SpecVersion, e.SpecVersion)
	}
	if e.ID == "" {
		return fmt.Errorf("id is required")
	}
	if e.Source == "" {
		return fmt.Errorf("source is required")
	}
	if err := ValidateType(e.Type); err != nil {
		return err
	}
	if e.Time.IsZero() {
		return fmt.Errorf("time is required")
	}
	if len(e.Data) == 0 {
		return fmt.Errorf("data is required")
	}
	if !json.Valid(e.Data) {
		return fmt.Errorf("data must be valid JSON")
	}
	return nil
}

// MarshalJSON writes time as RFC 3339 with nanoseconds
func (e CloudEvent) MarshalJSON() ([]byte, error) {
	type Alias CloudEvent
	return json.Marshal(&struct {
		Time string `json:"time"`
		*Alias
	}{
		Time:  e.Time.UTC().Format(time.RFC3339Nano),
		Alias: (*Alias)(&e),
	})
}

// UnmarshalJSON parses the JSON-encoded event
func (e *CloudEvent) UnmarshalJSON(data []byte) error {
	type Alias CloudEvent
	aux := &struct {
		Time string `json:"time"`
		*Alias
	}{
		Alias: (*Alias)(e),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("unmarshaling event: %w", err)
	}

	t, err := time.Parse(time.RFC3339Nano, aux.Time)
	if err != nil {
		return fmt.Errorf("parsing time: %w", err)
	}
	e.Time = t

	return nil
}

// Parse decodes and validates a structured-mode CloudEvent
func Parse(data []byte) (CloudEvent, error) {
	var event CloudEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return CloudEvent{}, fmt.Errorf("unmarshaling event: %w", err)
	}

	if err := event.Validate(); err != nil {
		return CloudEvent{}, fmt.Errorf("validating event: %w", err)
	}

	return event, nil
}

// Bytes returns the minified JSON body sent to subscribers
func (e CloudEvent) Bytes() ([]byte, error) {
	return json.Marshal(e)
}

// ValidateType checks an event type against the <prefix>.<resource>.<action> grammar
func ValidateType(eventType string) error {
	if eventType == "" {
		return fmt.Errorf("type is required")
	}
	if !typePattern.MatchString(eventType) {
		return fmt.Errorf("type must be <prefix>.<resource>.<action> in lowercase: %s", eventType)
	}
	return nil
}

/* ValidateFilter accepts an event type or a wildcard filter such as
 * "ag.access_pass.*" used when registering subscriptions
 */
func ValidateFilter(filter string) error {
	if prefix, ok := strings.CutSuffix(filter, ".*"); ok {
		if !prefixPattern.MatchString(prefix) {
			return fmt.Errorf("invalid wildcard filter: %s", filter)
		}
		return nil
	}
	return ValidateType(filter)
}

// Matches reports whether eventType is selected by any of filters.
// Supports exact matching and prefix wildcards ("ag.access_pass.*").
func Matches(eventType string, filters []string) bool {
	for _, filter := range filters {
		if filter == eventType {
			return true
		}
		if prefix, ok := strings.CutSuffix(filter, ".*"); ok && prefix != "" {
			if strings.HasPrefix(eventType, prefix+".") {
				return true
			}
		}
	}
	return false
}
