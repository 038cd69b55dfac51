package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/materials-admin/internal/cli"
	"github.com/jrsteele09/materials-admin/internal/fakeapi"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type harness struct {
	t         *testing.T
	api       *fakeapi.Server
	tokenFile string
}

type result struct {
	stdout string
	stderr string
	code   int
}

func newHarness(t *testing.T) *harness {
	t.Setenv("TOKEN_PASSPHRASE", "")
	api := fakeapi.New(t)
	api.AddUser("Ann", "ann@example.com", "secret")
	return &harness{t: t, api: api, tokenFile: filepath.Join(t.TempDir(), "token")}
}

func (h *harness) run(args ...string) result {
	h.t.Helper()
	cmd := cli.NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--api-url", h.api.URL, "--token-file", h.tokenFile}, args...))
	err := cmd.ExecuteContext(context.Background())
	return result{stdout: stdout.String(), stderr: stderr.String(), code: cli.GetExitCode(err)}
}

func (h *harness) login() {
	h.t.Helper()
	res := h.run("login", "--email", "ann@example.com", "--password", "secret")
	require.Equal(h.t, cli.ExitSuccess, res.code, res.stderr)
}

func (h *harness) seedShop() {
	h.api.Seed("materials",
		map[string]any{"name": "Steel", "category": "Metal", "unit": "kg", "quantity": 10, "price": 2.5, "supplier": "Acme"},
		map[string]any{"name": "Timber", "unit": "m", "quantity": 4, "price": 12},
	)
	h.api.Seed("clients",
		map[string]any{"name": "Ann"},
		map[string]any{"name": "Bob"},
	)
	h.api.Seed("purchases",
		map[string]any{"clientId": 1, "materialId": 1, "quantity": 2, "price": 2.5, "date": "2026-01-02"},
		map[string]any{"clientId": 2, "materialId": 2, "quantity": 4, "price": 12, "date": "2026-01-03"},
		map[string]any{"clientId": 1, "materialId": 1, "quantity": 10, "price": 2.5, "date": "2026-01-04"},
	)
}

func decode(t *testing.T, raw string) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}

func TestLoginWhoAmILogout(t *testing.T) {
	h := newHarness(t)

	res := h.run("login", "--email", "ann@example.com", "--password", "secret")
	require.Equal(t, cli.ExitSuccess, res.code, res.stderr)
	require.Equal(t, "Logged in as Ann <ann@example.com>\n", res.stdout)
	require.FileExists(t, h.tokenFile)

	res = h.run("whoami", "--format", "json")
	require.Equal(t, cli.ExitSuccess, res.code, res.stderr)
	body := decode(t, res.stdout)
	require.Equal(t, "ok", body["status"])
	data := body["data"].(map[string]any)
	require.Equal(t, "Ann", data["name"])
	require.Equal(t, "ann@example.com", data["email"])
	require.NotContains(t, data, "expiresAt")

	res = h.run("logout")
	require.Equal(t, cli.ExitSuccess, res.code)
	require.Equal(t, "Logged out\n", res.stdout)
	require.NoFileExists(t, h.tokenFile)

	res = h.run("whoami")
	require.Equal(t, cli.ExitAuth, res.code)
	require.Contains(t, res.stderr, "Error [E_AUTH]: not logged in")
	require.Equal(t, 1, h.api.CallCount(http.MethodGet, "/auth_me"), "no request without a token")
}

func TestLogin_WrongPassword(t *testing.T) {
	h := newHarness(t)

	res := h.run("login", "--email", "ann@example.com", "--password", "nope")
	require.Equal(t, cli.ExitAuth, res.code)
	require.Contains(t, res.stderr, "Error [E_AUTH]: Invalid email or password")
	require.NoFileExists(t, h.tokenFile)
}

func TestRegister(t *testing.T) {
	h := newHarness(t)

	res := h.run("register", "--name", "Bob Builder", "--email", "bob@example.com", "--password", "pw")
	require.Equal(t, cli.ExitSuccess, res.code, res.stderr)
	require.Equal(t, "Logged in as Bob Builder <bob@example.com>\n", res.stdout)

	res = h.run("register", "--name", "Bob", "--email", "bob@example.com", "--password", "pw", "--format", "json")
	require.Equal(t, cli.ExitFailure, res.code)
	body := decode(t, res.stdout)
	require.Equal(t, "error", body["status"])
	require.Equal(t, map[string]any{"code": "E_REMOTE", "message": "User already exists"}, body["error"])
}

func TestWhoAmI_RevokedToken(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.api.RevokeAll()

	res := h.run("whoami")
	require.Equal(t, cli.ExitAuth, res.code)
	require.Contains(t, res.stderr, `session rejected, run "adminctl login"`)
	require.NoFileExists(t, h.tokenFile, "a rejected token is forgotten")
}

func TestMaterialsList_Golden(t *testing.T) {
	h := newHarness(t)
	h.seedShop()
	h.login()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	res := h.run("materials", "list")
	require.Equal(t, cli.ExitSuccess, res.code, res.stderr)
	g.Assert(t, "materials_list_text", []byte(res.stdout))

	res = h.run("materials", "list", "--format", "json")
	require.Equal(t, cli.ExitSuccess, res.code, res.stderr)
	g.Assert(t, "materials_list_json", []byte(res.stdout))
}

func TestMaterials_AddUpdateDelete(t *testing.T) {
	h := newHarness(t)
	h.login()

	res := h.run("materials", "add", "--name", "Steel", "--unit", "kg", "--quantity", "10", "--price", "2.5", "--format", "json")
	require.Equal(t, cli.ExitSuccess, res.code, res.stderr)
	created := decode(t, res.stdout)["data"].(map[string]any)["material"].(map[string]any)
	require.EqualValues(t, 1, created["id"])
	require.Equal(t, "Steel", created["name"])

	res = h.run("materials", "update", "1", "--price", "3")
	require.Equal(t, cli.ExitSuccess, res.code, res.stderr)
	items := h.api.Items("materials")
	require.Len(t, items, 1)
	require.EqualValues(t, 3, items[0]["price"])
	require.Equal(t, "Steel", items[0]["name"], "unset flags keep their values")
	require.EqualValues(t, 10, items[0]["quantity"])

	res = h.run("materials", "delete", "1")
	require.Equal(t, cli.ExitSuccess, res.code, res.stderr)
	require.Equal(t, "Deleted material 1\n", res.stdout)
	require.Empty(t, h.api.Items("materials"))
}

func TestMaterialsUpdate_UnknownID(t *testing.T) {
	h := newHarness(t)
	h.login()

	res := h.run("materials", "update", "7", "--price", "3")
	require.Equal(t, cli.ExitCommandError, res.code)
	require.Contains(t, res.stderr, "no material with id 7")
	require.Zero(t, h.api.CallCount(http.MethodPut, "/materials/7"))
}

func TestBadID(t *testing.T) {
	h := newHarness(t)
	h.login()

	res := h.run("materials", "delete", "abc")
	require.Equal(t, cli.ExitCommandError, res.code)
	require.Contains(t, res.stderr, `invalid id "abc"`)
}

func TestNotLoggedIn_NoRequest(t *testing.T) {
	h := newHarness(t)

	res := h.run("materials", "list")
	require.Equal(t, cli.ExitAuth, res.code)
	require.Contains(t, res.stderr, "not logged in")
	require.Zero(t, h.api.CallCount(http.MethodGet, "/materials"))
}

func TestServerMessageIsShown(t *testing.T) {
	h := newHarness(t)
	h.login()

	h.api.FailNext(http.MethodGet, "/clients", http.StatusInternalServerError, "database down")
	res := h.run("clients", "list")
	require.Equal(t, cli.ExitFailure, res.code)
	require.Contains(t, res.stderr, "Error [E_REMOTE]: database down")

	h.api.FailNext(http.MethodGet, "/clients", http.StatusInternalServerError, "")
	res = h.run("clients", "list")
	require.Equal(t, cli.ExitFailure, res.code)
	require.Contains(t, res.stderr, "Error [E_REMOTE]: Failed to fetch clients")
}

func TestClientsAddAndList(t *testing.T) {
	h := newHarness(t)
	h.login()

	res := h.run("clients", "add", "--name", "Carol", "--email", "carol@example.com")
	require.Equal(t, cli.ExitSuccess, res.code, res.stderr)

	res = h.run("clients", "list", "--format", "yaml")
	require.Equal(t, cli.ExitSuccess, res.code, res.stderr)
	var body struct {
		Status string `yaml:"status"`
		Data   struct {
			Clients []map[string]any `yaml:"clients"`
		} `yaml:"data"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(res.stdout), &body))
	require.Equal(t, "ok", body.Status)
	require.Equal(t, []map[string]any{{"id": 1, "name": "Carol", "email": "carol@example.com"}}, body.Data.Clients)
}

func TestPurchasesAdd_DefaultsPriceAndDate(t *testing.T) {
	h := newHarness(t)
	h.seedShop()
	h.login()

	cli.NowTimeFunc = func() time.Time { return time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { cli.NowTimeFunc = time.Now })

	res := h.run("purchases", "add", "--client", "2", "--material", "2", "--quantity", "3")
	require.Equal(t, cli.ExitSuccess, res.code, res.stderr)
	require.Contains(t, res.stdout, "Revenue: 36.00")

	items := h.api.Items("purchases")
	require.Len(t, items, 4)
	last := items[3]
	require.EqualValues(t, 12, last["price"])
	require.Equal(t, "2026-03-04", last["date"])
}

func TestSummary_Golden(t *testing.T) {
	h := newHarness(t)
	h.seedShop()
	h.login()

	res := h.run("summary")
	require.Equal(t, cli.ExitSuccess, res.code, res.stderr)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "summary_text", []byte(res.stdout))
}

func TestSummary_FailsWhenAnyCollectionFails(t *testing.T) {
	h := newHarness(t)
	h.seedShop()
	h.login()

	h.api.FailNext(http.MethodGet, "/purchases", http.StatusBadGateway, "")
	res := h.run("summary", "--format", "json")
	require.Equal(t, cli.ExitFailure, res.code)
	body := decode(t, res.stdout)
	require.Equal(t, "Failed to fetch purchases", body["error"].(map[string]any)["message"])
}

func TestInvalidFormat(t *testing.T) {
	h := newHarness(t)

	res := h.run("materials", "list", "--format", "xml")
	require.Equal(t, cli.ExitCommandError, res.code)
	require.Contains(t, res.stderr, `invalid format "xml"`)
	require.Empty(t, h.api.Calls())
}

func TestGetExitCode(t *testing.T) {
	require.Equal(t, cli.ExitSuccess, cli.GetExitCode(nil))
	require.Equal(t, cli.ExitFailure, cli.GetExitCode(os.ErrNotExist))
	require.Equal(t, cli.ExitAuth, cli.GetExitCode(cli.WrapExitError(cli.ExitAuth, "x", os.ErrNotExist)))
}
