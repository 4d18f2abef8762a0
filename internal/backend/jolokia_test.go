package backend

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/mbean-bridge/internal/httpclient"
)

type requestLog struct {
	mu   sync.Mutex
	reqs []jolokiaRequest
}

func (l *requestLog) add(req jolokiaRequest) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reqs = append(l.reqs, req)
}

func (l *requestLog) all() []jolokiaRequest {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]jolokiaRequest(nil), l.reqs...)
}

// newJolokiaServer answers Jolokia requests with canned bodies keyed by request type.
func newJolokiaServer(t *testing.T, responses map[string]string, seen *requestLog) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var req jolokiaRequest
		require.NoError(t, json.Unmarshal(body, &req))
		if seen != nil {
			seen.add(req)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(responses[req.Type]))
	}))
	server.Config.SetKeepAlivesEnabled(false)
	t.Cleanup(server.Close)
	return server
}

func newTestJolokia(url string) *JolokiaGateway {
	return NewJolokiaGateway("local", url+"/", httpclient.NewDefaultClient(5*time.Second))
}

func TestJolokiaGateway_ListObjects(t *testing.T) {
	t.Parallel()

	seen := &requestLog{}
	server := newJolokiaServer(t, map[string]string{
		"search": `{"request":{"type":"search"},"value":["java.lang:type=Runtime","java.lang:type=Memory"],"status":200}`,
	}, seen)

	g := newTestJolokia(server.URL)
	names, err := g.ListObjects(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"java.lang:type=Memory", "java.lang:type=Runtime"}, names)

	reqs := seen.all()
	require.Len(t, reqs, 1)
	assert.Equal(t, "*:*", reqs[0].MBean, "empty pattern searches everything")
}

func TestJolokiaGateway_DescribeObject(t *testing.T) {
	t.Parallel()

	seen := &requestLog{}
	server := newJolokiaServer(t, map[string]string{
		"list": `{"value":{
			"class":"sun.management.MemoryImpl",
			"desc":"Information on the management interface of the MBean",
			"attr":{
				"Verbose":{"type":"boolean","desc":"Verbose","rw":true},
				"HeapMemoryUsage":{"type":"javax.management.openmbean.CompositeData","desc":"HeapMemoryUsage","rw":false}
			},
			"op":{"gc":{"args":[],"ret":"void","desc":"gc"}}
		},"status":200}`,
	}, seen)

	g := newTestJolokia(server.URL)
	info, err := g.DescribeObject(context.Background(), "java.lang:type=Memory")
	require.NoError(t, err)

	assert.Equal(t, "sun.management.MemoryImpl", info.ClassName)
	require.Len(t, info.Attributes, 2)
	assert.Equal(t, AttributeInfo{
		Name:        "HeapMemoryUsage",
		Type:        "javax.management.openmbean.CompositeData",
		Description: "HeapMemoryUsage",
	}, info.Attributes[0])
	assert.True(t, info.Attributes[1].Writable)

	reqs := seen.all()
	require.Len(t, reqs, 1)
	assert.Equal(t, "java.lang/type=Memory", reqs[0].Path)
}

func TestJolokiaGateway_GetAttributeValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		response string
		check    func(t *testing.T, v RawValue)
	}{
		{
			name:     "integer",
			response: `{"value":123456,"status":200}`,
			check: func(t *testing.T, v RawValue) {
				t.Helper()
				assert.Equal(t, KindInt, v.Kind())
				assert.Equal(t, int64(123456), v.IntValue())
			},
		},
		{
			name:     "float",
			response: `{"value":0.75,"status":200}`,
			check: func(t *testing.T, v RawValue) {
				t.Helper()
				assert.Equal(t, KindFloat, v.Kind())
				assert.InDelta(t, 0.75, v.FloatValue(), 1e-9)
			},
		},
		{
			name:     "null",
			response: `{"value":null,"status":200}`,
			check: func(t *testing.T, v RawValue) {
				t.Helper()
				assert.True(t, v.IsNull())
			},
		},
		{
			name:     "composite keeps key order",
			response: `{"value":{"init":1,"used":20,"max":-1,"committed":30},"status":200}`,
			check: func(t *testing.T, v RawValue) {
				t.Helper()
				require.Equal(t, KindComposite, v.Kind())
				assert.Equal(t, []string{"init", "used", "max", "committed"}, v.Composite().Keys)
				used, ok := v.Composite().Field("used")
				require.True(t, ok)
				assert.Equal(t, int64(20), used.IntValue())
			},
		},
		{
			name:     "array of scalars",
			response: `{"value":["a","b"],"status":200}`,
			check: func(t *testing.T, v RawValue) {
				t.Helper()
				require.Equal(t, KindTable, v.Kind())
				assert.Equal(t, []string{TableValueColumn}, v.Table().Columns)
				assert.Len(t, v.Table().Rows, 2)
			},
		},
		{
			name:     "array of objects",
			response: `{"value":[{"k":"a"},{"k":"b","extra":true}],"status":200}`,
			check: func(t *testing.T, v RawValue) {
				t.Helper()
				require.Equal(t, KindTable, v.Kind())
				assert.Equal(t, []string{"k", "extra"}, v.Table().Columns)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			seen := &requestLog{}
			server := newJolokiaServer(t, map[string]string{"read": tt.response}, seen)

			v, err := newTestJolokia(server.URL).GetAttributeValue(context.Background(), "java.lang:type=Memory", "HeapMemoryUsage")
			require.NoError(t, err)
			tt.check(t, v)

			reqs := seen.all()
			require.Len(t, reqs, 1)
			assert.Equal(t, "java.lang:type=Memory", reqs[0].MBean)
			assert.Equal(t, "HeapMemoryUsage", reqs[0].Attribute)
		})
	}
}

func TestJolokiaGateway_Errors(t *testing.T) {
	t.Parallel()

	t.Run("instance not found", func(t *testing.T) {
		t.Parallel()
		server := newJolokiaServer(t, map[string]string{
			"read": `{"error_type":"javax.management.InstanceNotFoundException","error":"javax.management.InstanceNotFoundException : foo:type=Bar","status":404}`,
		}, nil)

		_, err := newTestJolokia(server.URL).GetAttributeValue(context.Background(), "foo:type=Bar", "X")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrObjectNotFound)

		var jerr *JolokiaError
		require.ErrorAs(t, err, &jerr)
		assert.Equal(t, 404, jerr.Status)
	})

	t.Run("attribute not found", func(t *testing.T) {
		t.Parallel()
		server := newJolokiaServer(t, map[string]string{
			"read": `{"error_type":"javax.management.AttributeNotFoundException","error":"No such attribute: X","status":404}`,
		}, nil)

		_, err := newTestJolokia(server.URL).GetAttributeValue(context.Background(), "java.lang:type=Memory", "X")
		assert.ErrorIs(t, err, ErrAttributeNotFound)
	})

	t.Run("http failure", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		_, err := newTestJolokia(server.URL).ListObjects(context.Background(), "")
		var httpErr *httpclient.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
	})

	t.Run("invalid json", func(t *testing.T) {
		t.Parallel()
		server := newJolokiaServer(t, map[string]string{"search": `not json`}, nil)

		_, err := newTestJolokia(server.URL).ListObjects(context.Background(), "")
		assert.ErrorContains(t, err, "invalid JSON")
	})

	t.Run("invalid object name", func(t *testing.T) {
		t.Parallel()
		_, err := newTestJolokia("http://127.0.0.1:1").DescribeObject(context.Background(), "no-domain")
		assert.ErrorContains(t, err, "invalid object name")
	})
}

func TestListPath(t *testing.T) {
	t.Parallel()

	path, err := listPath("jboss.as:subsystem=datasources,path=/opt/ds!1")
	require.NoError(t, err)
	assert.Equal(t, "jboss.as/subsystem=datasources,path=!/opt!/ds!!1", path)
}
