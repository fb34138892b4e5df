package httpadapter

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gin-gonic/gin"
)

const apiVersion = "0.1.0"

func todoRef(name string, schema *openapi3.Schema) *openapi3.SchemaRef {
	return openapi3.NewSchemaRef("#/components/schemas/"+name, schema)
}

// OpenAPI は REST API の OpenAPI 3 ドキュメントを組み立てる
func OpenAPI() *openapi3.T {
	todo := openapi3.NewObjectSchema().
		WithProperty("id", openapi3.NewInt64Schema()).
		WithProperty("text", openapi3.NewStringSchema()).
		WithProperty("completed", openapi3.NewBoolSchema())
	todo.Required = []string{"id", "text", "completed"}

	create := openapi3.NewObjectSchema().
		WithProperty("text", openapi3.NewStringSchema().WithMinLength(1))
	create.Required = []string{"text"}

	update := openapi3.NewObjectSchema().
		WithProperty("text", openapi3.NewStringSchema().WithMinLength(1)).
		WithProperty("completed", openapi3.NewBoolSchema())

	errBody := openapi3.NewObjectSchema().
		WithProperty("code", openapi3.NewStringSchema()).
		WithProperty("message", openapi3.NewStringSchema())
	errSchema := openapi3.NewObjectSchema().WithProperty("error", errBody)

	todoList := openapi3.NewArraySchema()
	todoList.Items = todoRef("Todo", todo)

	jsonResp := func(desc string, ref *openapi3.SchemaRef) *openapi3.ResponseRef {
		return &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription(desc).WithJSONSchemaRef(ref)}
	}
	errResp := func(desc string) *openapi3.ResponseRef {
		return jsonResp(desc, todoRef("Error", errSchema))
	}
	idParam := openapi3.Parameters{
		&openapi3.ParameterRef{Value: openapi3.NewPathParameter("id").WithSchema(openapi3.NewInt64Schema())},
	}

	paths := openapi3.NewPaths()
	paths.Set("/todos", &openapi3.PathItem{
		Post: &openapi3.Operation{
			OperationID: "create_todo",
			Tags:        []string{"todos"},
			RequestBody: &openapi3.RequestBodyRef{
				Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchemaRef(todoRef("CreateTodo", create)),
			},
			Responses: openapi3.NewResponses(
				openapi3.WithStatus(http.StatusCreated, jsonResp("Todo created", todoRef("Todo", todo))),
				openapi3.WithStatus(http.StatusBadRequest, errResp("Malformed body")),
				openapi3.WithStatus(http.StatusUnprocessableEntity, errResp("Validation failed")),
			),
		},
		Get: &openapi3.Operation{
			OperationID: "all_todo",
			Tags:        []string{"todos"},
			Responses: openapi3.NewResponses(
				openapi3.WithStatus(http.StatusOK, jsonResp("All todos, newest first", openapi3.NewSchemaRef("", todoList))),
			),
		},
	})
	paths.Set("/todos/{id}", &openapi3.PathItem{
		Get: &openapi3.Operation{
			OperationID: "find_todo",
			Tags:        []string{"todos"},
			Parameters:  idParam,
			Responses: openapi3.NewResponses(
				openapi3.WithStatus(http.StatusOK, jsonResp("Todo found", todoRef("Todo", todo))),
				openapi3.WithStatus(http.StatusNotFound, errResp("Todo not found")),
			),
		},
		Patch: &openapi3.Operation{
			OperationID: "update_todo",
			Tags:        []string{"todos"},
			Parameters:  idParam,
			RequestBody: &openapi3.RequestBodyRef{
				Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchemaRef(todoRef("UpdateTodo", update)),
			},
			Responses: openapi3.NewResponses(
				openapi3.WithStatus(http.StatusOK, jsonResp("Todo updated", todoRef("Todo", todo))),
				openapi3.WithStatus(http.StatusNotFound, errResp("Todo not found")),
				openapi3.WithStatus(http.StatusUnprocessableEntity, errResp("Validation failed")),
			),
		},
		Delete: &openapi3.Operation{
			OperationID: "delete_todo",
			Tags:        []string{"todos"},
			Parameters:  idParam,
			Responses: openapi3.NewResponses(
				openapi3.WithStatus(http.StatusNoContent, &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("Todo deleted")}),
				openapi3.WithStatus(http.StatusNotFound, errResp("Todo not found")),
			),
		},
	})

	return &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   "todo-api",
			Version: apiVersion,
		},
		Paths: paths,
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{
				"Todo":       openapi3.NewSchemaRef("", todo),
				"CreateTodo": openapi3.NewSchemaRef("", create),
				"UpdateTodo": openapi3.NewSchemaRef("", update),
				"Error":      openapi3.NewSchemaRef("", errSchema),
			},
		},
	}
}

// MarshalOpenAPI は整形済み JSON を返す
func MarshalOpenAPI() ([]byte, error) {
	b, err := json.MarshalIndent(OpenAPI(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal openapi: %w", err)
	}
	return b, nil
}

// WriteOpenAPI は path に OpenAPI ドキュメントを書き出す
func WriteOpenAPI(path string) error {
	b, err := MarshalOpenAPI()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write openapi %s: %w", path, err)
	}
	return nil
}

func serveOpenAPI(doc []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", doc)
	}
}

const swaggerUIPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>todo-api docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js" crossorigin></script>
  <script>
    window.onload = () => {
      window.ui = SwaggerUIBundle({ url: "/docs/openapi.json", dom_id: "#swagger-ui" });
    };
  </script>
</body>
</html>
`

func serveSwaggerUI(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(swaggerUIPage))
}
