// idcorectl es el cliente de administración del provider.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type client struct {
	BaseURL   string
	APIKey    string
	OutFormat string // "json" | "text"
	HTTP      *http.Client
}

func (c *client) do(method, path string, body []byte, headers map[string]string) (int, []byte, error) {
	u := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequest(method, u, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("X-Admin-API-Key", c.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b, nil
}

// doForm postea application/x-www-form-urlencoded (endpoints OAuth).
func (c *client) doForm(path string, form url.Values) (int, []byte, error) {
	u := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequest(http.MethodPost, u, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b, nil
}

func (c *client) print(status int, body []byte) {
	if c.OutFormat == "json" {
		var v any
		if json.Unmarshal(body, &v) == nil {
			p, _ := json.MarshalIndent(v, "", "  ")
			fmt.Println(string(p))
			return
		}
	}
	if len(body) > 0 {
		fmt.Println(string(body))
	} else {
		fmt.Printf("status=%d\n", status)
	}
}

func main() {
	cl := &client{
		HTTP: &http.Client{Timeout: 15 * time.Second},
	}

	root := &cobra.Command{
		Use:   "idcorectl",
		Short: "Cliente de administración del OAuth2/OIDC provider",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cl.BaseURL == "" {
				cl.BaseURL = os.Getenv("IDCORE_URL")
			}
			if cl.BaseURL == "" {
				cl.BaseURL = "http://localhost:8080"
			}
			if cl.APIKey == "" {
				cl.APIKey = os.Getenv("ADMIN_API_KEY")
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&cl.BaseURL, "base-url", "", "URL base del provider (default $IDCORE_URL)")
	root.PersistentFlags().StringVar(&cl.APIKey, "api-key", "", "admin API key (default $ADMIN_API_KEY)")
	root.PersistentFlags().StringVar(&cl.OutFormat, "out", "json", "formato de salida: json|text")

	// ── clients ──
	clientsCmd := &cobra.Command{Use: "clients", Short: "Gestión del client registry"}

	var (
		name        string
		clientType  string
		redirects   []string
		grantTypes  []string
		scopes      []string
		requirePKCE bool
	)
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Registra un client nuevo",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, _ := json.Marshal(map[string]any{
				"name":          name,
				"type":          clientType,
				"redirect_uris": redirects,
				"grant_types":   grantTypes,
				"scopes":        scopes,
				"require_pkce":  requirePKCE,
			})
			status, b, err := cl.do(http.MethodPost, "/admin/clients", body, nil)
			if err != nil {
				return err
			}
			cl.print(status, b)
			return nil
		},
	}
	createCmd.Flags().StringVar(&name, "name", "", "nombre del client")
	createCmd.Flags().StringVar(&clientType, "type", "confidential", "public|confidential")
	createCmd.Flags().StringSliceVar(&redirects, "redirect-uri", nil, "redirect URI permitida (repetible)")
	createCmd.Flags().StringSliceVar(&grantTypes, "grant-type", nil, "grant type permitido (repetible)")
	createCmd.Flags().StringSliceVar(&scopes, "scope", nil, "scope permitido (repetible)")
	createCmd.Flags().BoolVar(&requirePKCE, "require-pkce", false, "exigir PKCE en todos los grants")
	_ = createCmd.MarkFlagRequired("name")
	_ = createCmd.MarkFlagRequired("redirect-uri")

	getCmd := &cobra.Command{
		Use:   "get <client_id>",
		Short: "Muestra un client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, b, err := cl.do(http.MethodGet, "/admin/clients/"+url.PathEscape(args[0]), nil, nil)
			if err != nil {
				return err
			}
			cl.print(status, b)
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Lista los clients registrados",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, b, err := cl.do(http.MethodGet, "/admin/clients", nil, nil)
			if err != nil {
				return err
			}
			cl.print(status, b)
			return nil
		},
	}

	var active bool
	setActiveCmd := &cobra.Command{
		Use:   "set-active <client_id>",
		Short: "Habilita o deshabilita un client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, _ := json.Marshal(map[string]bool{"active": active})
			status, b, err := cl.do(http.MethodPatch, "/admin/clients/"+url.PathEscape(args[0]), body, nil)
			if err != nil {
				return err
			}
			cl.print(status, b)
			return nil
		},
	}
	setActiveCmd.Flags().BoolVar(&active, "active", true, "estado deseado")

	clientsCmd.AddCommand(createCmd, getCmd, listCmd, setActiveCmd)

	// ── grant ──
	var (
		grantUser      string
		grantClient    string
		grantRedirect  string
		grantScope     string
		grantNonce     string
		grantChallenge string
		grantMethod    string
	)
	grantCmd := &cobra.Command{
		Use:   "grant",
		Short: "Emite un authorization code para un usuario ya autenticado",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, _ := json.Marshal(map[string]string{
				"user_id":               grantUser,
				"client_id":             grantClient,
				"redirect_uri":          grantRedirect,
				"scope":                 grantScope,
				"nonce":                 grantNonce,
				"code_challenge":        grantChallenge,
				"code_challenge_method": grantMethod,
			})
			status, b, err := cl.do(http.MethodPost, "/admin/grants", body, nil)
			if err != nil {
				return err
			}
			cl.print(status, b)
			return nil
		},
	}
	grantCmd.Flags().StringVar(&grantUser, "user-id", "", "user id del directory")
	grantCmd.Flags().StringVar(&grantClient, "client-id", "", "client_id destino")
	grantCmd.Flags().StringVar(&grantRedirect, "redirect-uri", "", "redirect_uri registrada")
	grantCmd.Flags().StringVar(&grantScope, "scope", "", "scopes solicitados (space-separated)")
	grantCmd.Flags().StringVar(&grantNonce, "nonce", "", "nonce OIDC")
	grantCmd.Flags().StringVar(&grantChallenge, "code-challenge", "", "PKCE challenge")
	grantCmd.Flags().StringVar(&grantMethod, "code-challenge-method", "", "S256|plain")
	_ = grantCmd.MarkFlagRequired("user-id")
	_ = grantCmd.MarkFlagRequired("client-id")
	_ = grantCmd.MarkFlagRequired("redirect-uri")

	// ── token / revoke / introspect (endpoints OAuth, con credenciales de client) ──
	var (
		oaClientID     string
		oaClientSecret string
	)

	var (
		tokCode     string
		tokRedirect string
		tokVerifier string
		tokRefresh  string
		tokScope    string
	)
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Canjea un code o rota un refresh token",
		RunE: func(cmd *cobra.Command, args []string) error {
			form := url.Values{}
			form.Set("client_id", oaClientID)
			if oaClientSecret != "" {
				form.Set("client_secret", oaClientSecret)
			}
			if tokCode != "" {
				form.Set("grant_type", "authorization_code")
				form.Set("code", tokCode)
				form.Set("redirect_uri", tokRedirect)
				if tokVerifier != "" {
					form.Set("code_verifier", tokVerifier)
				}
			} else {
				form.Set("grant_type", "refresh_token")
				form.Set("refresh_token", tokRefresh)
				if tokScope != "" {
					form.Set("scope", tokScope)
				}
			}
			status, b, err := cl.doForm("/oauth2/token", form)
			if err != nil {
				return err
			}
			cl.print(status, b)
			return nil
		},
	}
	tokenCmd.Flags().StringVar(&oaClientID, "client-id", "", "client_id")
	tokenCmd.Flags().StringVar(&oaClientSecret, "client-secret", "", "client_secret (confidential)")
	tokenCmd.Flags().StringVar(&tokCode, "code", "", "authorization code")
	tokenCmd.Flags().StringVar(&tokRedirect, "redirect-uri", "", "redirect_uri usada en el grant")
	tokenCmd.Flags().StringVar(&tokVerifier, "code-verifier", "", "PKCE verifier")
	tokenCmd.Flags().StringVar(&tokRefresh, "refresh-token", "", "refresh token a rotar")
	tokenCmd.Flags().StringVar(&tokScope, "scope", "", "scopes a pedir (subset)")
	_ = tokenCmd.MarkFlagRequired("client-id")

	var revToken, revHint string
	revokeCmd := &cobra.Command{
		Use:   "revoke",
		Short: "Revoca un token",
		RunE: func(cmd *cobra.Command, args []string) error {
			form := url.Values{}
			form.Set("client_id", oaClientID)
			if oaClientSecret != "" {
				form.Set("client_secret", oaClientSecret)
			}
			form.Set("token", revToken)
			if revHint != "" {
				form.Set("token_type_hint", revHint)
			}
			status, b, err := cl.doForm("/oauth2/revoke", form)
			if err != nil {
				return err
			}
			cl.print(status, b)
			return nil
		},
	}
	revokeCmd.Flags().StringVar(&oaClientID, "client-id", "", "client_id")
	revokeCmd.Flags().StringVar(&oaClientSecret, "client-secret", "", "client_secret (confidential)")
	revokeCmd.Flags().StringVar(&revToken, "token", "", "token a revocar")
	revokeCmd.Flags().StringVar(&revHint, "hint", "", "access_token|refresh_token")
	_ = revokeCmd.MarkFlagRequired("client-id")
	_ = revokeCmd.MarkFlagRequired("token")

	var intToken, intHint string
	introspectCmd := &cobra.Command{
		Use:   "introspect",
		Short: "Introspecciona un token",
		RunE: func(cmd *cobra.Command, args []string) error {
			form := url.Values{}
			form.Set("client_id", oaClientID)
			if oaClientSecret != "" {
				form.Set("client_secret", oaClientSecret)
			}
			form.Set("token", intToken)
			if intHint != "" {
				form.Set("token_type_hint", intHint)
			}
			status, b, err := cl.doForm("/oauth2/introspect", form)
			if err != nil {
				return err
			}
			cl.print(status, b)
			return nil
		},
	}
	introspectCmd.Flags().StringVar(&oaClientID, "client-id", "", "client_id")
	introspectCmd.Flags().StringVar(&oaClientSecret, "client-secret", "", "client_secret (confidential)")
	introspectCmd.Flags().StringVar(&intToken, "token", "", "token a introspeccionar")
	introspectCmd.Flags().StringVar(&intHint, "hint", "", "access_token|refresh_token")
	_ = introspectCmd.MarkFlagRequired("client-id")
	_ = introspectCmd.MarkFlagRequired("token")

	discoveryCmd := &cobra.Command{
		Use:   "discovery",
		Short: "Muestra el documento de discovery",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, b, err := cl.do(http.MethodGet, "/.well-known/openid-configuration", nil, nil)
			if err != nil {
				return err
			}
			cl.print(status, b)
			return nil
		},
	}

	root.AddCommand(clientsCmd, grantCmd, tokenCmd, revokeCmd, introspectCmd, discoveryCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
