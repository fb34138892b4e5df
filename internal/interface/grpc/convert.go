package grpcadapter

import (
	"fmt"
	"math"

	domain_todo "github.com/hijjiri/todo-api/internal/domain/todo"
	"google.golang.org/protobuf/types/known/structpb"
)

// Struct の number は float64 なので、id は 2^53 までしか正確に運べない
const maxExactID = 1 << 53

// --- converter (domain -> proto) ---

func toStruct(t domain_todo.Todo) *structpb.Struct {
	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			"id":        structpb.NewNumberValue(float64(t.ID)),
			"text":      structpb.NewStringValue(t.Text),
			"completed": structpb.NewBoolValue(t.Completed),
		},
	}
}

func toListValue(list []domain_todo.Todo) *structpb.ListValue {
	out := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(list))}
	for _, t := range list {
		out.Values = append(out.Values, structpb.NewStructValue(toStruct(t)))
	}
	return out
}

func updateToStruct(id int64, in domain_todo.UpdateTodo) *structpb.Struct {
	s := &structpb.Struct{
		Fields: map[string]*structpb.Value{
			"id": structpb.NewNumberValue(float64(id)),
		},
	}
	if in.Text != nil {
		s.Fields["text"] = structpb.NewStringValue(*in.Text)
	}
	if in.Completed != nil {
		s.Fields["completed"] = structpb.NewBoolValue(*in.Completed)
	}
	return s
}

// --- converter (proto -> domain) ---

func fromStruct(s *structpb.Struct) (domain_todo.Todo, error) {
	id, err := idField(s, "id")
	if err != nil {
		return domain_todo.Todo{}, err
	}

	text, ok, err := stringField(s, "text")
	if err != nil {
		return domain_todo.Todo{}, err
	}
	if !ok {
		return domain_todo.Todo{}, fmt.Errorf("field %q is required", "text")
	}

	completed, _, err := boolField(s, "completed")
	if err != nil {
		return domain_todo.Todo{}, err
	}

	return domain_todo.Todo{ID: id, Text: text, Completed: completed}, nil
}

func fromListValue(l *structpb.ListValue) ([]domain_todo.Todo, error) {
	out := make([]domain_todo.Todo, 0, len(l.GetValues()))
	for i, v := range l.GetValues() {
		s := v.GetStructValue()
		if s == nil {
			return nil, fmt.Errorf("list item %d is not an object", i)
		}
		t, err := fromStruct(s)
		if err != nil {
			return nil, fmt.Errorf("list item %d: %w", i, err)
		}
		out = append(out, t)
	}
	return out, nil
}

// updateFromStruct は null / 欠落フィールドを「指定なし」として扱う
func updateFromStruct(s *structpb.Struct) (int64, domain_todo.UpdateTodo, error) {
	var in domain_todo.UpdateTodo

	id, err := idField(s, "id")
	if err != nil {
		return 0, in, err
	}

	text, ok, err := stringField(s, "text")
	if err != nil {
		return 0, in, err
	}
	if ok {
		in.Text = &text
	}

	completed, ok, err := boolField(s, "completed")
	if err != nil {
		return 0, in, err
	}
	if ok {
		in.Completed = &completed
	}

	return id, in, nil
}

func field(s *structpb.Struct, name string) (*structpb.Value, bool) {
	v, ok := s.GetFields()[name]
	if !ok || v == nil {
		return nil, false
	}
	if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
		return nil, false
	}
	return v, true
}

func idField(s *structpb.Struct, name string) (int64, error) {
	v, ok := field(s, name)
	if !ok {
		return 0, fmt.Errorf("field %q is required", name)
	}
	n, isNum := v.GetKind().(*structpb.Value_NumberValue)
	if !isNum {
		return 0, fmt.Errorf("field %q must be a number", name)
	}
	f := n.NumberValue
	if f != math.Trunc(f) || math.Abs(f) > maxExactID {
		return 0, fmt.Errorf("field %q must be an integer", name)
	}
	return int64(f), nil
}

func stringField(s *structpb.Struct, name string) (string, bool, error) {
	v, ok := field(s, name)
	if !ok {
		return "", false, nil
	}
	str, isStr := v.GetKind().(*structpb.Value_StringValue)
	if !isStr {
		return "", false, fmt.Errorf("field %q must be a string", name)
	}
	return str.StringValue, true, nil
}

func boolField(s *structpb.Struct, name string) (bool, bool, error) {
	v, ok := field(s, name)
	if !ok {
		return false, false, nil
	}
	b, isBool := v.GetKind().(*structpb.Value_BoolValue)
	if !isBool {
		return false, false, fmt.Errorf("field %q must be a bool", name)
	}
	return b.BoolValue, true, nil
}
