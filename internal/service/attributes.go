package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/mbean-bridge/internal/attribute"
	"github.com/stacklok/mbean-bridge/internal/backend"
	"github.com/stacklok/mbean-bridge/internal/objectname"
	"github.com/stacklok/mbean-bridge/internal/otel"
)

const (
	compositeType = "javax.management.openmbean.CompositeData"
	tabularType   = "javax.management.openmbean.TabularData"

	previewErrorPrefix = "[ERROR] - "
)

// GetAttributesInfo describes the attributes of one object. Composite attributes
// with a readable value are expanded into one row per field.
func (s *bridgeService) GetAttributesInfo(
	ctx context.Context, backendName, objectName string, opts ...Option[AttributesInfoOptions],
) ([]AttributeInfoRow, error) {
	ctx, span := otel.StartSpan(ctx, s.tracer, "service.GetAttributesInfo", trace.WithAttributes(
		otel.AttrBackendName.String(backendName),
		otel.AttrObjectName.String(objectName),
	))
	defer span.End()

	o := &AttributesInfoOptions{NotWritableOnly: true}
	if err := applyOptions(o, opts); err != nil {
		return nil, err
	}

	g, err := s.gateway(backendName)
	if err != nil {
		return nil, err
	}

	rows := []AttributeInfoRow{}
	if objectName == "" {
		return rows, nil
	}

	info, err := g.DescribeObject(ctx, objectName)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}

	for _, attr := range info.Attributes {
		if o.NotWritableOnly && attr.Writable {
			continue
		}

		if attr.Type == compositeType {
			value, err := g.GetAttributeValue(ctx, objectName, attr.Name)
			if c := value.Composite(); err == nil && c != nil {
				rows = append(rows, expandComposite(objectName, attr, c, o.ShowPreview)...)
				continue
			}
		}

		row := AttributeInfoRow{
			Name:        attr.Name,
			Type:        attr.Type,
			Description: attr.Description,
			IsWritable:  attr.Writable,
			ObjectName:  objectName,
		}
		if o.ShowPreview {
			row.Preview = s.preview(ctx, g, objectName, attr.Name)
		}
		rows = append(rows, row)
	}

	span.SetAttributes(otel.AttrResultCount.Int(len(rows)))
	return rows, nil
}

// SuggestDefinitions turns attribute info rows into definitions. Objects under
// the discovery root of a macro are addressed through the macro token.
func (s *bridgeService) SuggestDefinitions(
	_ context.Context, rows []AttributeInfoRow, logged bool,
) ([]attribute.Definition, error) {
	defs := make([]attribute.Definition, 0, len(rows))
	for _, row := range rows {
		if row.Name == "" {
			return nil, fmt.Errorf("%w: attribute name is required", ErrInvalidInput)
		}
		if row.ObjectName == "" {
			return nil, fmt.Errorf("%w: object name is required for %s", ErrInvalidInput, row.Name)
		}

		defs = append(defs, attribute.Definition{
			Name:     row.Name,
			Object:   s.macroFor(row.ObjectName),
			Type:     attribute.FromJavaType(row.Type),
			Logged:   logged,
			Category: attribute.DefaultCategory,
		})
	}
	return defs, nil
}

func (s *bridgeService) macroFor(objectName string) string {
	for _, m := range s.macros {
		root := objectname.Root(m.Pattern)
		if root != "" && strings.HasPrefix(objectName, root) {
			return m.Token
		}
	}
	return objectName
}

func (*bridgeService) preview(ctx context.Context, g backend.Gateway, objectName, attr string) *string {
	value, err := g.GetAttributeValue(ctx, objectName, attr)
	if err != nil {
		msg := previewErrorPrefix + err.Error()
		return &msg
	}
	if value.IsNull() {
		return nil
	}
	text := formatPreview(value)
	return &text
}

func expandComposite(
	objectName string, attr backend.AttributeInfo, c *backend.Composite, showPreview bool,
) []AttributeInfoRow {
	rows := make([]AttributeInfoRow, 0, len(c.Keys))
	description := c.TypeName
	if description == "" {
		description = attr.Description
	}
	for _, key := range c.Keys {
		field := c.Fields[key]
		row := AttributeInfoRow{
			Name:        attr.Name + attribute.CompositeSeparator + key,
			Type:        javaTypeOf(field),
			Description: description,
			IsWritable:  attr.Writable,
			ObjectName:  objectName,
		}
		if showPreview {
			text := formatPreview(field)
			row.Preview = &text
		}
		rows = append(rows, row)
	}
	return rows
}

// javaTypeOf names the backend type of a composite field from its value kind.
func javaTypeOf(v backend.RawValue) string {
	switch v.Kind() {
	case backend.KindString:
		return "java.lang.String"
	case backend.KindBool:
		return "java.lang.Boolean"
	case backend.KindInt:
		return "java.lang.Long"
	case backend.KindFloat:
		return "java.lang.Double"
	case backend.KindTime:
		return "java.util.Date"
	case backend.KindBytes:
		return "[B"
	case backend.KindComposite:
		return compositeType
	case backend.KindTable:
		return tabularType
	default:
		return "java.lang.Object"
	}
}

func formatPreview(v backend.RawValue) string {
	switch v.Kind() {
	case backend.KindNull:
		return "null"
	case backend.KindString:
		return v.Str()
	case backend.KindBool:
		return strconv.FormatBool(v.BoolValue())
	case backend.KindInt:
		return strconv.FormatInt(v.IntValue(), 10)
	case backend.KindFloat:
		return strconv.FormatFloat(v.FloatValue(), 'g', -1, 64)
	case backend.KindTime:
		return v.TimeValue().UTC().Format(time.RFC3339Nano)
	default:
		data, err := json.Marshal(v.Interface())
		if err != nil {
			return previewErrorPrefix + err.Error()
		}
		return string(data)
	}
}
