package backend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"

	"github.com/stacklok/mbean-bridge/internal/httpclient"
	"github.com/stacklok/mbean-bridge/internal/objectname"
)

const (
	jolokiaRequestSearch = "search"
	jolokiaRequestList   = "list"
	jolokiaRequestRead   = "read"

	jolokiaMatchAll = "*:*"
)

// JolokiaError is an error reported inside a Jolokia response body.
type JolokiaError struct {
	Status    int
	ErrorType string
	Message   string
}

func (e *JolokiaError) Error() string {
	if e.ErrorType == "" {
		return fmt.Sprintf("jolokia status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("jolokia status %d (%s): %s", e.Status, e.ErrorType, e.Message)
}

// Unwrap maps well-known JMX exceptions onto the backend sentinel errors.
func (e *JolokiaError) Unwrap() error {
	switch {
	case strings.HasSuffix(e.ErrorType, "InstanceNotFoundException"):
		return ErrObjectNotFound
	case strings.HasSuffix(e.ErrorType, "AttributeNotFoundException"):
		return ErrAttributeNotFound
	default:
		return nil
	}
}

// JolokiaGateway reads attributes from a JMX agent over the Jolokia HTTP protocol.
type JolokiaGateway struct {
	name   string
	url    string
	client httpclient.Client
}

type jolokiaRequest struct {
	Type      string `json:"type"`
	MBean     string `json:"mbean,omitempty"`
	Attribute string `json:"attribute,omitempty"`
	Path      string `json:"path,omitempty"`
}

// NewJolokiaGateway creates a gateway for the agent at url.
func NewJolokiaGateway(name, url string, client httpclient.Client) *JolokiaGateway {
	return &JolokiaGateway{
		name:   name,
		url:    strings.TrimRight(url, "/"),
		client: client,
	}
}

// Name returns the configured backend name
func (g *JolokiaGateway) Name() string {
	return g.name
}

// ListObjects implements Gateway
func (g *JolokiaGateway) ListObjects(ctx context.Context, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = jolokiaMatchAll
	}

	value, err := g.execute(ctx, jolokiaRequest{Type: jolokiaRequestSearch, MBean: pattern})
	if err != nil {
		return nil, fmt.Errorf("failed to search objects matching %q: %w", pattern, err)
	}

	names := make([]string, 0, len(value.Array()))
	for _, item := range value.Array() {
		names = append(names, item.String())
	}
	sort.Strings(names)
	return names, nil
}

// DescribeObject implements Gateway
func (g *JolokiaGateway) DescribeObject(ctx context.Context, objectName string) (*ObjectInfo, error) {
	path, err := listPath(objectName)
	if err != nil {
		return nil, err
	}

	value, err := g.execute(ctx, jolokiaRequest{Type: jolokiaRequestList, Path: path})
	if err != nil {
		return nil, fmt.Errorf("failed to describe %s: %w", objectName, err)
	}
	if !value.Exists() || !value.IsObject() {
		return nil, fmt.Errorf("failed to describe %s: %w", objectName, ErrObjectNotFound)
	}

	info := &ObjectInfo{
		ObjectName:  objectName,
		ClassName:   value.Get("class").String(),
		Description: value.Get("desc").String(),
	}
	value.Get("attr").ForEach(func(key, attr gjson.Result) bool {
		info.Attributes = append(info.Attributes, AttributeInfo{
			Name:        key.String(),
			Type:        attr.Get("type").String(),
			Description: attr.Get("desc").String(),
			Writable:    attr.Get("rw").Bool(),
		})
		return true
	})
	sort.Slice(info.Attributes, func(i, j int) bool {
		return info.Attributes[i].Name < info.Attributes[j].Name
	})

	return info, nil
}

// GetAttributeValue implements Gateway
func (g *JolokiaGateway) GetAttributeValue(ctx context.Context, objectName, attribute string) (RawValue, error) {
	value, err := g.execute(ctx, jolokiaRequest{Type: jolokiaRequestRead, MBean: objectName, Attribute: attribute})
	if err != nil {
		return Null(), fmt.Errorf("failed to read %s of %s: %w", attribute, objectName, err)
	}
	return rawFromJSON(value), nil
}

// execute posts a single request and returns its "value" member.
func (g *JolokiaGateway) execute(ctx context.Context, req jolokiaRequest) (gjson.Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("failed to encode request: %w", err)
	}

	data, err := g.client.Post(ctx, g.url, body)
	if err != nil {
		return gjson.Result{}, err
	}
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, errors.New("agent returned invalid JSON")
	}

	resp := gjson.ParseBytes(data)
	if status := int(resp.Get("status").Int()); status != 200 {
		return gjson.Result{}, &JolokiaError{
			Status:    status,
			ErrorType: resp.Get("error_type").String(),
			Message:   resp.Get("error").String(),
		}
	}
	return resp.Get("value"), nil
}

// listPath turns an object name into a list request path:
// "<domain>/<key properties>" with "!" and "/" escaped.
func listPath(objectName string) (string, error) {
	domain, props, ok := strings.Cut(objectName, ":")
	if !ok || domain == "" || props == "" {
		return "", fmt.Errorf("%w: %q", objectname.ErrInvalidName, objectName)
	}
	return escapePathPart(domain) + "/" + escapePathPart(props), nil
}

func escapePathPart(s string) string {
	s = strings.ReplaceAll(s, "!", "!!")
	return strings.ReplaceAll(s, "/", "!/")
}

// rawFromJSON converts a Jolokia value. Objects become composites with keys in
// document order and arrays become tables.
func rawFromJSON(v gjson.Result) RawValue {
	switch v.Type {
	case gjson.Null:
		return Null()
	case gjson.True:
		return Bool(true)
	case gjson.False:
		return Bool(false)
	case gjson.Number:
		if i, err := strconv.ParseInt(v.Raw, 10, 64); err == nil {
			return Int(i)
		}
		return Float(v.Num)
	case gjson.String:
		return String(v.Str)
	}

	if v.IsObject() {
		var keys []string
		fields := make(map[string]RawValue)
		v.ForEach(func(key, value gjson.Result) bool {
			keys = append(keys, key.String())
			fields[key.String()] = rawFromJSON(value)
			return true
		})
		return NewComposite("", keys, fields)
	}

	if v.IsArray() {
		var columns []string
		seen := make(map[string]bool)
		var rows []map[string]RawValue
		for _, item := range v.Array() {
			row := make(map[string]RawValue)
			if item.IsObject() {
				item.ForEach(func(key, value gjson.Result) bool {
					k := key.String()
					if !seen[k] {
						seen[k] = true
						columns = append(columns, k)
					}
					row[k] = rawFromJSON(value)
					return true
				})
			} else {
				if !seen[TableValueColumn] {
					seen[TableValueColumn] = true
					columns = append(columns, TableValueColumn)
				}
				row[TableValueColumn] = rawFromJSON(item)
			}
			rows = append(rows, row)
		}
		return NewTable(columns, rows)
	}

	return Null()
}
