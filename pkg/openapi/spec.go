package openapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"

	"github.com/ghodss/yaml"
	"github.com/go-openapi/spec"
)

type SpecArgs struct {
	KnownHost    string
	BasePath     string
	Version      string
	ContactEmail string
	Title        string
	Description  string
	Schema       string
}

// NewSpec create a swagger spec and set some basic information.
func NewSpec(sa SpecArgs) *spec.Swagger {
	return &spec.Swagger{
		SwaggerProps: spec.SwaggerProps{
			Swagger:  "2.0",
			Schemes:  []string{sa.Schema},
			Produces: []string{"application/json"},
			Info: &spec.Info{
				InfoProps: spec.InfoProps{
					Title:       sa.Title,
					Description: sa.Description,
					Contact: &spec.ContactInfo{
						ContactInfoProps: spec.ContactInfoProps{
							Email: sa.ContactEmail,
						},
					},
					Version: sa.Version,
				},
			},
			Host:     sa.KnownHost,
			BasePath: sa.BasePath,
		},
	}
}

// Document collects definitions, tags and paths before they are written out.
type Document struct {
	defs  spec.Definitions
	tags  []spec.Tag
	paths map[string]spec.PathItem
}

func NewDocument() *Document {
	return &Document{
		defs:  spec.Definitions{},
		paths: map[string]spec.PathItem{},
	}
}

// Define registers the model of v under name.
func (d *Document) Define(name string, v interface{}) *Document {
	d.defs[name] = GenerateModel(reflect.ValueOf(v))
	return d
}

func (d *Document) Tag(names ...string) *Document {
	for _, name := range names {
		d.tags = append(d.tags, spec.Tag{TagProps: spec.TagProps{Name: name}})
	}
	return d
}

// Path attaches op to path under the given http method, keeping the
// operations registered earlier on the same path.
func (d *Document) Path(method, path string, op *spec.Operation) *Document {
	item := d.paths[path]
	switch method {
	case http.MethodGet:
		item.Get = op
	case http.MethodPut:
		item.Put = op
	case http.MethodPatch:
		item.Patch = op
	case http.MethodPost:
		item.Post = op
	case http.MethodDelete:
		item.Delete = op
	default:
		panic(fmt.Sprintf("unsupported method %v", method))
	}
	d.paths[path] = item
	return d
}

// Swagger merges the document into the basic spec built from sa.
func (d *Document) Swagger(sa SpecArgs) *spec.Swagger {
	swspec := NewSpec(sa)
	swspec.Definitions = d.defs
	swspec.Tags = d.tags
	swspec.Paths = &spec.Paths{Paths: d.paths}
	return swspec
}

func Operation(id, summary, tag string, params []spec.Parameter, resp *spec.Responses) *spec.Operation {
	return &spec.Operation{
		OperationProps: spec.OperationProps{
			ID:          id,
			Summary:     summary,
			Description: summary,
			Produces:    []string{"application/json"},
			Tags:        []string{tag},
			Parameters:  params,
			Responses:   resp,
		},
	}
}

func GenerateModel(rv reflect.Value) spec.Schema {
	properties := make(map[string]spec.Schema)
	var requiredFields []string
	for _, field := range typeFields(rv) {
		properties[field.Name] = spec.Schema{SchemaProps: specTyp(field.rv.Type())}
		if field.Required {
			requiredFields = append(requiredFields, field.Name)
		}
	}
	return spec.Schema{
		SchemaProps: spec.SchemaProps{
			Type:       spec.StringOrArray{"object"},
			Properties: properties,
			Required:   requiredFields,
		},
	}
}

func specTyp(t reflect.Type) spec.SchemaProps {
	schPro := spec.SchemaProps{}
	switch t.Kind() {
	case reflect.Bool:
		schPro.Type = spec.StringOrArray{"boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		schPro.Type = spec.StringOrArray{"integer"}
	case reflect.Float32, reflect.Float64:
		schPro.Type = spec.StringOrArray{"number"}
	case reflect.String:
		schPro.Type = spec.StringOrArray{"string"}
	case reflect.Slice, reflect.Array:
		items := spec.Schema{SchemaProps: specTyp(t.Elem())}
		schPro.Type = spec.StringOrArray{"array"}
		schPro.Items = &spec.SchemaOrArray{Schema: &items}
	default:
		panic(fmt.Sprintf("unsupported type %v", t))
	}
	return schPro
}

type Param struct {
	spec.Parameter
}

func (p *Param) WithParameterDesc(desc string) spec.Parameter {
	p.Description = desc
	return p.Parameter
}

func (p *Param) WithNewSchema(schema *spec.Schema) *Param {
	p.SimpleSchema = spec.SimpleSchema{}
	p.Schema = schema
	return p
}

func BuildParam(in, name, typ string, required bool, defaultValue interface{}, enum ...interface{}) *Param {
	p := &Param{
		Parameter: spec.Parameter{
			ParamProps: spec.ParamProps{
				In:       in,
				Name:     name,
				Required: required,
			},
			SimpleSchema: spec.SimpleSchema{
				Type:    typ,
				Default: defaultValue,
			},
			CommonValidations: spec.CommonValidations{
				Enum: enum,
			},
		},
	}
	if typ == "array" {
		p.Items = spec.NewItems().Typed("string", "")
		p.CollectionFormat = "multi"
	}
	return p
}

func PathParam(name string, enum ...interface{}) *Param {
	return BuildParam("path", name, "string", true, nil, enum...)
}

// BodyParam describes a request body carrying raw text.
func BodyParam() *Param {
	return BuildParam("body", "body", "", true, nil).WithNewSchema(&spec.Schema{
		SchemaProps: spec.SchemaProps{
			Type: spec.StringOrArray{"string"},
		},
	})
}

// BuildResp takes pairs of status code and response, the bad request and
// internal error responses are always included.
func BuildResp(respPairs ...interface{}) *spec.Responses {
	stResponses := map[int]spec.Response{
		http.StatusBadRequest: {
			ResponseProps: spec.ResponseProps{
				Description: "Bad Request",
			},
		},
		http.StatusInternalServerError: {
			ResponseProps: spec.ResponseProps{
				Description: "Internal server error, please report this",
			},
		},
	}
	for i := 0; i+1 < len(respPairs); i += 2 {
		stResponses[respPairs[i].(int)] = respPairs[i+1].(spec.Response)
	}
	return &spec.Responses{
		ResponsesProps: spec.ResponsesProps{
			StatusCodeResponses: stResponses,
		},
	}
}

func BuildSuccessResp(schema *spec.Schema) spec.Response {
	return DescribedResp("Success", schema)
}

func DescribedResp(desc string, schema *spec.Schema) spec.Response {
	return spec.Response{
		ResponseProps: spec.ResponseProps{
			Description: desc,
			Schema:      schema,
		},
	}
}

func ArrRefSchema(defName string) *spec.Schema {
	return &spec.Schema{
		SchemaProps: spec.SchemaProps{
			Type: spec.StringOrArray{"array"},
			Items: &spec.SchemaOrArray{
				Schema: ObjRefSchema(defName),
			},
		},
	}
}

func ObjRefSchema(defName string) *spec.Schema {
	return &spec.Schema{
		SchemaProps: spec.SchemaProps{
			Ref: spec.MustCreateRef(fmt.Sprintf("#/definitions/%v", defName)),
		},
	}
}

func Write(swspec *spec.Swagger, output io.Writer) error {
	if output == nil {
		return fmt.Errorf("invalid output")
	}
	b, err := marshalToYAMLFormat(swspec)
	if err != nil {
		return err
	}
	n, err := output.Write(b)
	if err != nil {
		return fmt.Errorf("write spec failed: %v", err)
	}
	if n != len(b) {
		return fmt.Errorf("write failed, expected: %v actual: %v", len(b), n)
	}
	return nil
}

func marshalToYAMLFormat(swspec *spec.Swagger) ([]byte, error) {
	b, err := json.Marshal(swspec)
	if err != nil {
		return nil, err
	}
	return yaml.JSONToYAML(b)
}
