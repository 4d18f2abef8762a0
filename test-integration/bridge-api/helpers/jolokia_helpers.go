package helpers

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"

	"github.com/goccy/go-json"

	"github.com/stacklok/mbean-bridge/internal/objectname"
)

// FakeAttribute is one attribute served by FakeJolokia. Value is raw JSON so
// composite key order is preserved.
type FakeAttribute struct {
	Type     string
	Value    string
	Writable bool
}

// FakeJolokia is an in-process Jolokia agent answering search, read and list requests.
type FakeJolokia struct {
	server *httptest.Server

	mu      sync.Mutex
	objects map[string]map[string]FakeAttribute
	reads   int
}

type fakeRequest struct {
	Type      string `json:"type"`
	MBean     string `json:"mbean"`
	Attribute string `json:"attribute"`
	Path      string `json:"path"`
}

// NewFakeJolokia starts a fake agent serving the given objects
func NewFakeJolokia(objects map[string]map[string]FakeAttribute) *FakeJolokia {
	f := &FakeJolokia{objects: objects}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	return f
}

// URL returns the agent base URL
func (f *FakeJolokia) URL() string {
	return f.server.URL + "/jolokia/"
}

// Close stops the agent
func (f *FakeJolokia) Close() {
	f.server.Close()
}

// SetValue replaces the raw JSON value of an attribute
func (f *FakeJolokia) SetValue(objectName, attr, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := f.objects[objectName][attr]
	a.Value = value
	f.objects[objectName][attr] = a
}

// RemoveObject unregisters an object
func (f *FakeJolokia) RemoveObject(objectName string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, objectName)
}

// Reads returns the number of read requests served
func (f *FakeJolokia) Reads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

func (f *FakeJolokia) handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req fakeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch req.Type {
	case "search":
		f.search(w, req.MBean)
	case "read":
		f.reads++
		f.read(w, req.MBean, req.Attribute)
	case "list":
		f.list(w, req.Path)
	default:
		writeAgentError(w, "java.lang.IllegalArgumentException", "unsupported request type "+req.Type)
	}
}

func (f *FakeJolokia) search(w http.ResponseWriter, pattern string) {
	p, err := objectname.ParsePattern(pattern)
	if err != nil {
		writeAgentError(w, "javax.management.MalformedObjectNameException", err.Error())
		return
	}
	names := []string{}
	for name := range f.objects {
		if p.Match(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	value, _ := json.Marshal(names)
	_, _ = fmt.Fprintf(w, `{"value":%s,"status":200}`, value)
}

func (f *FakeJolokia) read(w http.ResponseWriter, objectName, attr string) {
	attrs, ok := f.objects[objectName]
	if !ok {
		writeAgentError(w, "javax.management.InstanceNotFoundException", objectName)
		return
	}
	a, ok := attrs[attr]
	if !ok {
		writeAgentError(w, "javax.management.AttributeNotFoundException", "No such attribute: "+attr)
		return
	}
	_, _ = fmt.Fprintf(w, `{"value":%s,"status":200}`, a.Value)
}

func (f *FakeJolokia) list(w http.ResponseWriter, path string) {
	domain, props, _ := strings.Cut(path, "/")
	objectName := unescapePathPart(domain) + ":" + unescapePathPart(props)
	attrs, ok := f.objects[objectName]
	if !ok {
		writeAgentError(w, "javax.management.InstanceNotFoundException", objectName)
		return
	}

	desc := make(map[string]map[string]any, len(attrs))
	for name, a := range attrs {
		desc[name] = map[string]any{"type": a.Type, "desc": name, "rw": a.Writable}
	}
	value, _ := json.Marshal(map[string]any{"class": "FakeMBean", "desc": objectName, "attr": desc})
	_, _ = fmt.Fprintf(w, `{"value":%s,"status":200}`, value)
}

func writeAgentError(w http.ResponseWriter, errorType, message string) {
	body, _ := json.Marshal(map[string]any{
		"error_type": errorType,
		"error":      errorType + " : " + message,
		"status":     404,
	})
	_, _ = w.Write(body)
}

func unescapePathPart(s string) string {
	s = strings.ReplaceAll(s, "!/", "/")
	return strings.ReplaceAll(s, "!!", "!")
}
