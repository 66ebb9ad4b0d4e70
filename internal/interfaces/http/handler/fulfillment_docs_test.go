package handler

import (
	"go/ast"
	"go/parser"
	"go/token"
	"regexp"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	routerAnnotation = regexp.MustCompile(`@Router\s+(\S+)\s+\[(\w+)\]`)
	pathParam        = regexp.MustCompile(`:(\w+)`)
	handlerName      = regexp.MustCompile(`\.(\w+)-fm$`)
)

// Every registered fulfillment route has a swag block whose @Router matches it
func TestFulfillmentHandler_RouteAnnotations(t *testing.T) {
	file, err := parser.ParseFile(token.NewFileSet(), "fulfillment.go", nil, parser.ParseComments)
	require.NoError(t, err)

	docs := map[string]string{}
	for _, decl := range file.Decls {
		if fn, ok := decl.(*ast.FuncDecl); ok && fn.Doc != nil {
			docs[fn.Name.Name] = fn.Doc.Text()
		}
	}

	engine := gin.New()
	NewFulfillmentHandler(new(MockFulfillmentService)).RegisterRoutes(engine.Group(""))
	routes := engine.Routes()
	require.NotEmpty(t, routes)

	for _, route := range routes {
		m := handlerName.FindStringSubmatch(route.Handler)
		require.NotNil(t, m, route.Handler)
		name := m[1]

		doc := docs[name]
		assert.Contains(t, doc, "@Summary", name)
		assert.Contains(t, doc, "@Success", name)

		annotation := routerAnnotation.FindStringSubmatch(doc)
		require.NotNil(t, annotation, "%s has no @Router", name)
		assert.Equal(t, pathParam.ReplaceAllString(route.Path, "{$1}"), annotation[1], name)
		assert.Equal(t, strings.ToLower(route.Method), annotation[2], name)

		for _, param := range pathParam.FindAllStringSubmatch(route.Path, -1) {
			assert.Regexp(t, `@Param\s+`+param[1]+`\s+path`, doc, name)
		}
	}
}
