package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"tespkg.in/stash/pkg/codec"
	"tespkg.in/stash/pkg/stash"
	"tespkg.in/stash/pkg/store"
	"tespkg.in/stash/pkg/value"
)

// KeyVal is a slot as served over http, Value is the wire text.
type KeyVal struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
	Area      string `json:"area"`
	Kind      string `json:"kind"`
	Value     string `json:"value"`
}

type Size struct {
	Size int `json:"size"`
}

type Handler struct {
	*stash.Client
}

func NewHandler(c *stash.Client) *Handler {
	return &Handler{
		Client: c,
	}
}

func (h *Handler) GetEntries(c *gin.Context) {
	entries, err := h.QueryEntries(getNamespaces(c))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, jsonErrorf("query entries failed: %v", err))
		return
	}
	kvals := make([]KeyVal, 0, len(entries))
	for _, e := range entries {
		kval, err := toKeyVal(e.Key, e.Value)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, jsonErrorf("encode %v failed: %v", e.Key, err))
			return
		}
		kvals = append(kvals, kval)
	}
	c.JSON(http.StatusOK, kvals)
}

func (h *Handler) DeleteEntries(c *gin.Context) {
	if err := h.Clear(getNamespaces(c)); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, jsonErrorf("clear failed: %v", err))
		return
	}
	c.JSON(http.StatusOK, struct{}{})
}

func (h *Handler) GetSize(c *gin.Context) {
	n, err := h.Size(getNamespaces(c))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, jsonErrorf("size failed: %v", err))
		return
	}
	c.JSON(http.StatusOK, Size{Size: n})
}

func (h *Handler) GetKey(c *gin.Context) {
	ref, ok := getRef(c)
	if !ok {
		return
	}
	val, err := h.Load(ref)
	if err != nil {
		abortWithError(c, err)
		return
	}
	kval, err := toKeyVal(ref, val)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, jsonErrorf("encode %v failed: %v", ref, err))
		return
	}
	c.JSON(http.StatusOK, kval)
}

// PutKey stores the request body, read as wire text.
func (h *Handler) PutKey(c *gin.Context) {
	ref, ok := getRef(c)
	if !ok {
		return
	}
	val, ok := readValue(c)
	if !ok {
		return
	}
	if err := h.Store(ref, val); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, struct{}{})
}

// PatchKey merges the request body, an object in wire text, into the slot.
func (h *Handler) PatchKey(c *gin.Context) {
	ref, ok := getRef(c)
	if !ok {
		return
	}
	val, ok := readValue(c)
	if !ok {
		return
	}
	partial, isObject := val.(value.Object)
	if !isObject {
		c.AbortWithStatusJSON(http.StatusBadRequest, jsonErrorf("merge body must be an object, got %v", val.Kind()))
		return
	}
	if err := h.MergeInto(ref, partial); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, struct{}{})
}

func (h *Handler) DeleteKey(c *gin.Context) {
	ref, ok := getRef(c)
	if !ok {
		return
	}
	if err := h.Remove(ref); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, struct{}{})
}

func toKeyVal(ref stash.Ref, val value.Value) (KeyVal, error) {
	wire, err := codec.Encode(val)
	if err != nil {
		return KeyVal{}, err
	}
	return KeyVal{
		Namespace: ref.Namespace,
		Name:      ref.Name,
		Area:      string(ref.Area),
		Kind:      val.Kind().String(),
		Value:     wire,
	}, nil
}

func readValue(c *gin.Context) (value.Value, bool) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, jsonErrorf("read request body failed: %v", err))
		return nil, false
	}
	val, err := codec.Decode(string(body))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, jsonErrorf("decode request body failed: %v", err))
		return nil, false
	}
	return val, true
}

func getRef(c *gin.Context) (stash.Ref, bool) {
	ref, err := stash.NewRef(c.Param("namespace"), c.Param("name"), store.AreaName(c.Param("area")))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, jsonErrorf("%v", err))
		return stash.Ref{}, false
	}
	return ref, true
}

func abortWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, stash.ErrInvalidKey):
		c.AbortWithStatusJSON(http.StatusBadRequest, jsonErrorf("%v", err))
	case errors.Is(err, stash.ErrNotFound), errors.Is(err, stash.ErrMergeNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, jsonErrorf("%v", err))
	case errors.Is(err, stash.ErrMergeNotObject):
		c.AbortWithStatusJSON(http.StatusConflict, jsonErrorf("%v", err))
	case errors.Is(err, codec.ErrAbsentValue):
		c.AbortWithStatusJSON(http.StatusBadRequest, jsonErrorf("%v", err))
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, jsonErrorf("%v", err))
	}
}

func jsonErrorf(format string, a ...interface{}) interface{} {
	return struct {
		Error string `json:"error"`
	}{
		Error: fmt.Sprintf(format, a...),
	}
}

// getNamespaces reads the ns query parameters. Without any, every namespace
// is selected. A single empty ns selects none.
func getNamespaces(c *gin.Context) []string {
	vals, ok := c.GetQueryArray("ns")
	if !ok {
		return nil
	}
	namespaces := []string{}
	for _, v := range vals {
		if v != "" {
			namespaces = append(namespaces, v)
		}
	}
	return namespaces
}
