package http_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/colloquy"
	colloquyhttp "github.com/aretw0/colloquy/pkg/adapters/http"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*colloquyhttp.Server, *httptest.Server) {
	t.Helper()
	b := dsl.New("tavern").GlobalInt("gold", 10)
	b.Text("greet", "Keeper", "Welcome!").Next("menu").Interrupt("brawl", "bye")
	b.Choice("menu").
		Option("Buy ale", "ale", domain.AddInt("gold", -2)).
		Option("Leave", "bye")
	b.Text("ale", "Keeper", "{gold} gold left.").Next("bye")
	b.End("bye")
	loader, err := b.Loader()
	require.NoError(t, err)

	factory := func(req colloquyhttp.StartRequest, collab domain.Collaborators) (*colloquy.Engine, error) {
		return colloquy.New(loader, colloquy.WithCollaborators(collab))
	}
	srv := colloquyhttp.NewServer(factory, colloquyhttp.WithLoader(loader))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})
	return srv, ts
}

func do(t *testing.T, method, url string, body any) (*http.Response, colloquyhttp.State) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var st colloquyhttp.State
	if resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	}
	return resp, st
}

func TestGetHealth(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestGetInfo(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/info")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "colloquy-http", body["app"])
	assert.Equal(t, colloquy.Version, body["version"])
	assert.Equal(t, colloquyhttp.APIVersion, body["api_version"])
}

func TestGraphs(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/graphs")
	require.NoError(t, err)
	var list map[string][]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	resp.Body.Close()
	assert.Equal(t, []string{"tavern"}, list["graphs"])

	resp, err = http.Get(ts.URL + "/graphs/tavern/mermaid")
	require.NoError(t, err)
	var sb strings.Builder
	_, err = bufio.NewReader(resp.Body).WriteTo(&sb)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Contains(t, sb.String(), "graph TD")
	assert.Contains(t, sb.String(), "greet --> menu")

	resp, err = http.Get(ts.URL + "/graphs/nope/mermaid")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSession_Flow(t *testing.T) {
	_, ts := newTestServer(t)

	resp, st := do(t, http.MethodPost, ts.URL+"/sessions", colloquyhttp.StartRequest{GraphID: "tavern"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotEmpty(t, st.SessionID)
	assert.Equal(t, "running", st.Status)
	assert.Equal(t, "greet", st.NodeID)
	require.NotNil(t, st.Pending)
	assert.Equal(t, "input", st.Pending.Kind)
	assert.True(t, st.Pending.Interruptible)
	require.Len(t, st.Output, 1)
	assert.Equal(t, "Welcome!", st.Output[0].Text)

	base := ts.URL + "/sessions/" + st.SessionID

	resp, st = do(t, http.MethodPost, base+"/confirm", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, st.Pending)
	assert.Equal(t, "choice", st.Pending.Kind)
	assert.Len(t, st.Pending.Choices, 2)

	resp, _ = do(t, http.MethodPost, base+"/choice", colloquyhttp.ChoiceRequest{OptionID: 7})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, st = do(t, http.MethodPost, base+"/choice", colloquyhttp.ChoiceRequest{OptionID: 0})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ale", st.NodeID)
	require.NotEmpty(t, st.Output)
	assert.Equal(t, "8 gold left.", st.Output[len(st.Output)-1].Text)

	resp, err := http.Get(base + "/variables")
	require.NoError(t, err)
	var vars domain.VariableSnapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&vars))
	resp.Body.Close()
	assert.Equal(t, []domain.IntEntry{{Key: "gold", Value: 8}}, vars.Ints)

	resp, st = do(t, http.MethodPost, base+"/confirm", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ended", st.Status)
	assert.Nil(t, st.Pending)

	// The response carrying the end is the last one; the session is gone afterwards.
	resp, _ = do(t, http.MethodPost, base+"/confirm", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = do(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSession_Delete(t *testing.T) {
	srv, ts := newTestServer(t)

	_, st := do(t, http.MethodPost, ts.URL+"/sessions", colloquyhttp.StartRequest{GraphID: "tavern"})
	base := ts.URL + "/sessions/" + st.SessionID
	require.Equal(t, 1, srv.Len())

	resp, st := do(t, http.MethodDelete, base, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ended", st.Status)
	assert.Zero(t, srv.Len())

	resp, _ = do(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSession_RetiredWhenRunEnds(t *testing.T) {
	b := dsl.New("hall")
	b.Text("hello", "Guard", "Halt!").Next("bye")
	b.End("bye")
	loader, err := b.Loader()
	require.NoError(t, err)

	engines := make(chan *colloquy.Engine, 1)
	factory := func(req colloquyhttp.StartRequest, collab domain.Collaborators) (*colloquy.Engine, error) {
		eng, err := colloquy.New(loader, colloquy.WithCollaborators(collab))
		engines <- eng
		return eng, err
	}
	srv := colloquyhttp.NewServer(factory)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	_, st := do(t, http.MethodPost, ts.URL+"/sessions", colloquyhttp.StartRequest{GraphID: "hall"})
	require.Equal(t, "running", st.Status)
	require.Equal(t, 1, srv.Len())

	// End the run outside any request.
	(<-engines).End()

	assert.Eventually(t, func() bool { return srv.Len() == 0 }, time.Second, 10*time.Millisecond)
	resp, _ := do(t, http.MethodGet, ts.URL+"/sessions/"+st.SessionID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSession_Interrupt(t *testing.T) {
	_, ts := newTestServer(t)

	_, st := do(t, http.MethodPost, ts.URL+"/sessions", colloquyhttp.StartRequest{GraphID: "tavern"})
	base := ts.URL + "/sessions/" + st.SessionID

	resp, _ := do(t, http.MethodPost, base+"/interrupt", colloquyhttp.InterruptRequest{Event: "sneeze"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, st = do(t, http.MethodPost, base+"/interrupt", colloquyhttp.InterruptRequest{Event: "brawl"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ended", st.Status)

	resp, _ = do(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSession_StartErrors(t *testing.T) {
	_, ts := newTestServer(t)

	resp, _ := do(t, http.MethodPost, ts.URL+"/sessions", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, http.MethodPost, ts.URL+"/sessions", colloquyhttp.StartRequest{GraphID: "missing"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSubscribeEvents(t *testing.T) {
	srv, ts := newTestServer(t)

	_, st := do(t, http.MethodPost, ts.URL+"/sessions", colloquyhttp.StartRequest{GraphID: "tavern"})
	base := ts.URL + "/sessions/" + st.SessionID

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := make(chan string, 16)
	go func() {
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	require.Equal(t, "event: ping", <-lines)

	srv.Streams.Broadcast(st.SessionID, `{"type":"notice"}`)
	do(t, http.MethodPost, base+"/confirm", nil)

	var data []string
	for line := range lines {
		if strings.HasPrefix(line, "data: {") {
			data = append(data, strings.TrimPrefix(line, "data: "))
		}
		if len(data) == 2 {
			break
		}
	}
	require.Len(t, data, 2)
	assert.JSONEq(t, `{"type":"notice"}`, data[0])
	assert.Contains(t, data[1], `"type":"choices"`)
}
