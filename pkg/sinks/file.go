package sinks

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Sink kinds accepted in the sinks file.
const (
	KindHTTP   = "http"
	KindSQS    = "sqs"
	KindSNS    = "sns"
	KindPubSub = "pubsub"
)

const defaultHTTPTimeoutSeconds = 5

// File is the decoded sinks file:
//
//	sinks:
//	  - name: audit
//	    kind: http
//	    http: {url: https://hooks.example.com/openapi}
type File struct {
	Sinks []Spec `json:"sinks" yaml:"sinks"`
}

// Spec declares one sink. Exactly the block matching Kind is read.
type Spec struct {
	Name     string      `json:"name" yaml:"name"`
	Kind     string      `json:"kind" yaml:"kind"`
	Disabled bool        `json:"disabled" yaml:"disabled"`
	HTTP     *HTTPSpec   `json:"http,omitempty" yaml:"http,omitempty"`
	SQS      *SQSSpec    `json:"sqs,omitempty" yaml:"sqs,omitempty"`
	SNS      *SNSSpec    `json:"sns,omitempty" yaml:"sns,omitempty"`
	PubSub   *PubSubSpec `json:"pubsub,omitempty" yaml:"pubsub,omitempty"`
}

// HTTPSpec posts each event as JSON to a webhook.
type HTTPSpec struct {
	URL            string            `json:"url" yaml:"url"`
	Method         string            `json:"method" yaml:"method"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// AWSKeys are static credentials. Without them the default AWS chain applies.
type AWSKeys struct {
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
	SessionToken    string `json:"session_token" yaml:"session_token"`
}

// SQSSpec sends each event as an SQS message.
type SQSSpec struct {
	QueueURL string   `json:"queue_url" yaml:"queue_url"`
	Region   string   `json:"region" yaml:"region"`
	Endpoint string   `json:"endpoint" yaml:"endpoint"`
	Keys     *AWSKeys `json:"keys,omitempty" yaml:"keys,omitempty"`
}

// SNSSpec publishes each event to an SNS topic.
type SNSSpec struct {
	TopicARN string   `json:"topic_arn" yaml:"topic_arn"`
	Region   string   `json:"region" yaml:"region"`
	Endpoint string   `json:"endpoint" yaml:"endpoint"`
	Keys     *AWSKeys `json:"keys,omitempty" yaml:"keys,omitempty"`
}

// PubSubSpec publishes each event to a Google Cloud Pub/Sub topic.
type PubSubSpec struct {
	ProjectID       string `json:"project_id" yaml:"project_id"`
	Topic           string `json:"topic" yaml:"topic"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
}

// ReadFile decodes and checks the sinks file at path. An empty path or a
// missing file yields a File without sinks. Unknown keys are rejected.
func ReadFile(path string) (*File, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return &File{}, nil
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &File{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read sinks file: %w", err)
	}

	var f File
	if strings.EqualFold(filepath.Ext(path), ".json") {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		err = dec.Decode(&f)
	} else {
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		err = dec.Decode(&f)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("decode sinks file %s: %w", path, err)
	}

	seen := make(map[string]struct{}, len(f.Sinks))
	for i := range f.Sinks {
		s := &f.Sinks[i]
		s.normalize()
		if err := s.check(); err != nil {
			return nil, fmt.Errorf("sinks[%d]: %w", i, err)
		}
		if _, dup := seen[s.Name]; dup {
			return nil, fmt.Errorf("sinks[%d]: duplicate name %q", i, s.Name)
		}
		seen[s.Name] = struct{}{}
	}
	return &f, nil
}

// Active returns the sinks not marked disabled, in file order.
func (f *File) Active() []Spec {
	if f == nil {
		return nil
	}
	var out []Spec
	for _, s := range f.Sinks {
		if !s.Disabled {
			out = append(out, s)
		}
	}
	return out
}

func (s *Spec) normalize() {
	s.Name = strings.TrimSpace(s.Name)
	s.Kind = strings.ToLower(strings.TrimSpace(s.Kind))
	if h := s.HTTP; h != nil {
		h.URL = strings.TrimSpace(h.URL)
		h.Method = strings.ToUpper(strings.TrimSpace(h.Method))
		if h.Method == "" {
			h.Method = http.MethodPost
		}
		if h.TimeoutSeconds <= 0 {
			h.TimeoutSeconds = defaultHTTPTimeoutSeconds
		}
	}
	if q := s.SQS; q != nil {
		q.QueueURL = strings.TrimSpace(q.QueueURL)
		q.Region = strings.TrimSpace(q.Region)
		q.Endpoint = strings.TrimSpace(q.Endpoint)
	}
	if t := s.SNS; t != nil {
		t.TopicARN = strings.TrimSpace(t.TopicARN)
		t.Region = strings.TrimSpace(t.Region)
		t.Endpoint = strings.TrimSpace(t.Endpoint)
	}
	if p := s.PubSub; p != nil {
		p.ProjectID = strings.TrimSpace(p.ProjectID)
		p.Topic = strings.TrimSpace(p.Topic)
	}
}

func (s Spec) check() error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	var err error
	switch s.Kind {
	case KindHTTP:
		if s.HTTP == nil {
			return fmt.Errorf("sink %q: http block is required", s.Name)
		}
		err = s.HTTP.check()
	case KindSQS:
		if s.SQS == nil {
			return fmt.Errorf("sink %q: sqs block is required", s.Name)
		}
		err = requireAll(map[string]string{"queue_url": s.SQS.QueueURL, "region": s.SQS.Region})
	case KindSNS:
		if s.SNS == nil {
			return fmt.Errorf("sink %q: sns block is required", s.Name)
		}
		err = requireAll(map[string]string{"topic_arn": s.SNS.TopicARN, "region": s.SNS.Region})
	case KindPubSub:
		if s.PubSub == nil {
			return fmt.Errorf("sink %q: pubsub block is required", s.Name)
		}
		err = requireAll(map[string]string{"project_id": s.PubSub.ProjectID, "topic": s.PubSub.Topic})
	case "":
		return fmt.Errorf("sink %q: kind is required", s.Name)
	default:
		return fmt.Errorf("sink %q: unknown kind %q", s.Name, s.Kind)
	}
	if err != nil {
		return fmt.Errorf("sink %q: %w", s.Name, err)
	}
	return nil
}

func (h *HTTPSpec) check() error {
	if err := requireAll(map[string]string{"url": h.URL}); err != nil {
		return err
	}
	if _, err := url.ParseRequestURI(h.URL); err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	switch h.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return nil
	default:
		return fmt.Errorf("method %s cannot carry an event body", h.Method)
	}
}

func requireAll(fields map[string]string) error {
	var missing []string
	for name, v := range fields {
		if v == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("missing %s", strings.Join(missing, ", "))
}
