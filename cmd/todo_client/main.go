package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	domain_todo "github.com/hijjiri/todo-api/internal/domain/todo"
	grpcadapter "github.com/hijjiri/todo-api/internal/interface/grpc"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func printTodo(prefix string, t domain_todo.Todo) {
	fmt.Printf("%sid=%d text=%s completed=%v\n", prefix, t.ID, t.Text, t.Completed)
}

func main() {
	addr := flag.String("addr", "localhost:50051", "gRPC server address")
	mode := flag.String("mode", "list", "mode: create | list | stream | get | update | delete")
	text := flag.String("text", "", "text for create / update")
	completed := flag.String("completed", "", "completed for update (true / false, empty = keep)")
	id := flag.Int64("id", 0, "id for get / update / delete")
	timeout := flag.Duration("timeout", 3*time.Second, "request timeout")
	flag.Parse()

	conn, err := grpc.NewClient(
		*addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	defer conn.Close()

	client := grpcadapter.NewTodoServiceClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	switch *mode {
	case "create":
		if *text == "" {
			log.Fatal("text is required for create")
		}
		t, err := client.CreateTodo(ctx, *text)
		if err != nil {
			log.Fatalf("CreateTodo failed: %v", err)
		}
		printTodo("created: ", t)

	case "list":
		list, err := client.ListTodos(ctx)
		if err != nil {
			log.Fatalf("ListTodos failed: %v", err)
		}
		if len(list) == 0 {
			fmt.Println("no todos")
			return
		}
		fmt.Println("todos:")
		for _, t := range list {
			printTodo("- ", t)
		}

	case "stream":
		err := client.ListTodosStream(ctx, func(t domain_todo.Todo) error {
			printTodo("- ", t)
			return nil
		})
		if err != nil {
			log.Fatalf("ListTodosStream failed: %v", err)
		}

	case "get":
		if *id == 0 {
			log.Fatal("id is required for get")
		}
		t, err := client.GetTodo(ctx, *id)
		if err != nil {
			log.Fatalf("GetTodo failed: %v", err)
		}
		printTodo("", t)

	case "update":
		if *id == 0 {
			log.Fatal("id is required for update")
		}
		var in domain_todo.UpdateTodo
		if *text != "" {
			in.Text = text
		}
		switch *completed {
		case "":
		case "true", "false":
			v := *completed == "true"
			in.Completed = &v
		default:
			log.Fatalf("completed must be true or false: %q", *completed)
		}
		t, err := client.UpdateTodo(ctx, *id, in)
		if err != nil {
			log.Fatalf("UpdateTodo failed: %v", err)
		}
		printTodo("updated: ", t)

	case "delete":
		if *id == 0 {
			log.Fatal("id is required for delete")
		}
		if err := client.DeleteTodo(ctx, *id); err != nil {
			log.Fatalf("DeleteTodo failed: %v", err)
		}
		fmt.Printf("deleted: id=%d\n", *id)

	default:
		log.Fatalf("unknown mode: %s", *mode)
	}
}
