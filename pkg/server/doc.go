package server

import (
	"fmt"
	"io"
	"net/http"

	openspec "github.com/go-openapi/spec"
	"tespkg.in/stash/pkg/openapi"
	"tespkg.in/stash/pkg/store"
)

const (
	slotTag   = "Slot"
	entryTag  = "Entry"
	keyValDef = "keyVal"
	sizeDef   = "size"
)

// GenerateSpec generate openapi spec
func GenerateSpec(iw io.Writer, sa openapi.SpecArgs) error {
	nsParam := func(desc string) openspec.Parameter {
		return openapi.BuildParam("query", "ns", "array", false, nil).WithParameterDesc(desc)
	}
	keyParams := func(more ...openspec.Parameter) []openspec.Parameter {
		var areas []interface{}
		for _, a := range store.AreaNames {
			areas = append(areas, string(a))
		}
		params := []openspec.Parameter{
			openapi.PathParam("area", areas...).WithParameterDesc("Storage area of the slot"),
			openapi.PathParam("namespace").WithParameterDesc("Namespace of the slot"),
			openapi.PathParam("name").WithParameterDesc("Name of the slot"),
		}
		return append(params, more...)
	}
	notFound := openapi.DescribedResp("Slot not found", nil)
	const keyPath = "/key/{area}/{namespace}/{name}"

	doc := openapi.NewDocument().
		Define(keyValDef, KeyVal{}).
		Define(sizeDef, Size{}).
		Tag(slotTag, entryTag).
		Path(http.MethodGet, "/entries", openapi.Operation(
			"GetEntries", "List decoded slots of the given namespaces", entryTag,
			[]openspec.Parameter{nsParam("Namespaces to list, all when omitted, none when empty")},
			openapi.BuildResp(http.StatusOK, openapi.BuildSuccessResp(openapi.ArrRefSchema(keyValDef))))).
		Path(http.MethodDelete, "/entries", openapi.Operation(
			"DeleteEntries", "Remove every slot of the given namespaces", entryTag,
			[]openspec.Parameter{nsParam("Namespaces to clear, all when omitted, none when empty")},
			openapi.BuildResp(http.StatusOK, openapi.BuildSuccessResp(nil)))).
		Path(http.MethodGet, "/size", openapi.Operation(
			"GetSize", "Count slots of the given namespaces", entryTag,
			[]openspec.Parameter{nsParam("Namespaces to count, all when omitted, none when empty")},
			openapi.BuildResp(http.StatusOK, openapi.BuildSuccessResp(openapi.ObjRefSchema(sizeDef))))).
		Path(http.MethodGet, keyPath, openapi.Operation(
			"GetKey", "Get a single slot", slotTag,
			keyParams(),
			openapi.BuildResp(
				http.StatusOK, openapi.BuildSuccessResp(openapi.ObjRefSchema(keyValDef)),
				http.StatusNotFound, notFound))).
		Path(http.MethodPut, keyPath, openapi.Operation(
			"PutKey", "Create or replace a slot with the wire text in body", slotTag,
			keyParams(openapi.BodyParam().WithParameterDesc("Wire text of the value")),
			openapi.BuildResp(http.StatusOK, openapi.BuildSuccessResp(nil)))).
		Path(http.MethodPatch, keyPath, openapi.Operation(
			"PatchKey", "Deep merge the object in body into an object slot", slotTag,
			keyParams(openapi.BodyParam().WithParameterDesc("Wire text of the partial object")),
			openapi.BuildResp(
				http.StatusOK, openapi.BuildSuccessResp(nil),
				http.StatusNotFound, notFound,
				http.StatusConflict, openapi.DescribedResp("Slot does not hold an object", nil)))).
		Path(http.MethodDelete, keyPath, openapi.Operation(
			"DeleteKey", "Remove a slot", slotTag,
			keyParams(),
			openapi.BuildResp(http.StatusOK, openapi.BuildSuccessResp(nil))))

	if err := openapi.Write(doc.Swagger(sa), iw); err != nil {
		return fmt.Errorf("write to file failed: %v", err)
	}
	return nil
}
