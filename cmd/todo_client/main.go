package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// todo は API のレスポンス。id はストアによって "1" と 1 のどちらでも来る。
type todo struct {
	ID          json.RawMessage `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Completed   bool            `json:"completed"`
}

func (t todo) id() string { return strings.Trim(string(t.ID), `"`) }

type todoBody struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

func main() {
	addr := flag.String("addr", "http://localhost:8000", "HTTP API base URL")
	healthAddr := flag.String("health-addr", "localhost:50051", "gRPC health address (mode=health)")
	mode := flag.String("mode", "list", "mode: create | list | get | update | delete | health")
	id := flag.String("id", "", "id for get / update / delete")
	title := flag.String("title", "", "title for create / update")
	desc := flag.String("desc", "", "description for create / update")
	completed := flag.Bool("completed", false, "completed flag for create / update")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	base := strings.TrimRight(*addr, "/")
	client := &http.Client{}

	switch *mode {
	case "create":
		var t todo
		body := todoBody{Title: *title, Description: *desc, Completed: *completed}
		if err := call(ctx, client, http.MethodPost, base+"/todos/", body, &t); err != nil {
			log.Fatalf("create failed: %v", err)
		}
		fmt.Printf("created: id=%s title=%s completed=%v\n", t.id(), t.Title, t.Completed)

	case "list":
		var list []todo
		if err := call(ctx, client, http.MethodGet, base+"/todos/", nil, &list); err != nil {
			log.Fatalf("list failed: %v", err)
		}
		if len(list) == 0 {
			fmt.Println("no todos")
			return
		}
		fmt.Println("todos:")
		for _, t := range list {
			fmt.Printf("- id=%s title=%s description=%s completed=%v\n", t.id(), t.Title, t.Description, t.Completed)
		}

	case "get":
		requireID(*id)
		var t todo
		if err := call(ctx, client, http.MethodGet, base+"/todos/"+*id, nil, &t); err != nil {
			log.Fatalf("get failed: %v", err)
		}
		fmt.Printf("id=%s title=%s description=%s completed=%v\n", t.id(), t.Title, t.Description, t.Completed)

	case "update":
		requireID(*id)
		var t todo
		body := todoBody{Title: *title, Description: *desc, Completed: *completed}
		if err := call(ctx, client, http.MethodPut, base+"/todos/"+*id, body, &t); err != nil {
			log.Fatalf("update failed: %v", err)
		}
		fmt.Printf("updated: id=%s title=%s completed=%v\n", t.id(), t.Title, t.Completed)

	case "delete":
		requireID(*id)
		var res struct {
			Message string `json:"message"`
		}
		if err := call(ctx, client, http.MethodDelete, base+"/todos/"+*id, nil, &res); err != nil {
			log.Fatalf("delete failed: %v", err)
		}
		fmt.Printf("delete result: %s\n", res.Message)

	case "health":
		conn, err := grpc.NewClient(*healthAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			log.Fatalf("failed to connect: %v", err)
		}
		defer conn.Close()

		res, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{})
		if err != nil {
			log.Fatalf("health check failed: %v", err)
		}
		fmt.Printf("health: %s\n", res.GetStatus())

	default:
		log.Fatalf("unknown mode: %s", *mode)
	}
}

func requireID(id string) {
	if id == "" {
		log.Fatal("id is required")
	}
}

// call は JSON を送受信する。2xx 以外はボディごとエラーにする。
func call(ctx context.Context, client *http.Client, method, url string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	if res.StatusCode/100 != 2 {
		return fmt.Errorf("%s %s: status %d: %s", method, url, res.StatusCode, strings.TrimSpace(string(b)))
	}
	return json.Unmarshal(b, out)
}
