// Package guardian — шлюз делегирования авторизации во внешний
// Guardian-сервис. Решения allow/deny принимает только Guardian;
// при его недоступности шлюз закрывается (deny + ErrUpstream),
// чтобы вызывающий ответил 5xx, а не ложным 403.
package guardian

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"identity/internal/apperr"
	"identity/internal/logs"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	cookieName string
}

func New(baseURL string, timeout time.Duration, cookieName string) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if cookieName == "" {
		cookieName = "access_token"
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		cookieName: cookieName,
	}
}

// Decision — нормализованный результат проверки доступа.
type Decision struct {
	Allow bool
}

type checkRequest struct {
	Resource string `json:"resource"`
	Action   string `json:"action"`
}

// CheckAccess спрашивает Guardian, можно ли actor'у выполнить action над
// resource. Токен пробрасывается как есть, без переподписи.
//
// Guardian исторически отвечает двумя формами:
//
//	{"allowed": true}
//	{"decision": "allow"}  (или "deny")
//
// Обе сводим к Decision здесь, дальше границы шлюза разнобой не уходит.
func (c *Client) CheckAccess(ctx context.Context, rawToken, resource, action string) (Decision, error) {
	body, _ := json.Marshal(checkRequest{Resource: resource, Action: action})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/check-access", bytes.NewReader(body))
	if err != nil {
		return Decision{}, apperr.Wrap(apperr.ErrUpstream, "guardian request build: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.forwardCredential(req, rawToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logs.Logger.Errorf("guardian unreachable: %v", err)
		return Decision{}, apperr.Wrap(apperr.ErrUpstream, "guardian unreachable")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusForbidden:
		return Decision{Allow: false}, nil
	default:
		logs.Logger.Errorf("guardian check-access status %d", resp.StatusCode)
		return Decision{}, apperr.Wrap(apperr.ErrUpstream,
			"guardian returned status %d", resp.StatusCode)
	}

	var raw struct {
		Allowed  *bool  `json:"allowed"`
		Decision string `json:"decision"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		logs.Logger.Errorf("guardian malformed check-access response: %v", err)
		return Decision{}, apperr.Wrap(apperr.ErrUpstream, "guardian malformed response")
	}
	switch {
	case raw.Allowed != nil:
		return Decision{Allow: *raw.Allowed}, nil
	case raw.Decision == "allow":
		return Decision{Allow: true}, nil
	case raw.Decision == "deny":
		return Decision{Allow: false}, nil
	default:
		return Decision{}, apperr.Wrap(apperr.ErrUpstream, "guardian unknown decision shape")
	}
}

// ListRoles возвращает назначения ролей пользователя как есть (JSON
// Guardian'а), нормализовав форму ответа.
func (c *Client) ListRoles(ctx context.Context, rawToken, userID string) ([]map[string]any, error) {
	q := url.Values{"user_id": {userID}}
	data, err := c.get(ctx, rawToken, "/user-roles?"+q.Encode())
	if err != nil {
		return nil, err
	}
	return normalizeList(data, "roles")
}

// AssignRole назначает роль через Guardian. Повтор назначения — конфликт.
func (c *Client) AssignRole(ctx context.Context, rawToken, userID, roleID string) (map[string]any, error) {
	body, _ := json.Marshal(map[string]string{"user_id": userID, "role_id": roleID})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/user-roles", bytes.NewReader(body))
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrUpstream, "guardian request build: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.forwardCredential(req, rawToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrUpstream, "guardian unreachable")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated:
		var out map[string]any
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return nil, apperr.Wrap(apperr.ErrUpstream, "guardian malformed response")
		}
		return out, nil
	case http.StatusConflict:
		return nil, apperr.Wrap(apperr.ErrConflict, "role %s already assigned", roleID)
	case http.StatusBadRequest:
		return nil, apperr.Wrap(apperr.ErrValidation, "invalid role or request data")
	default:
		logs.Logger.Errorf("guardian assign role status %d", resp.StatusCode)
		return nil, apperr.Wrap(apperr.ErrUpstream,
			"guardian returned status %d", resp.StatusCode)
	}
}

// RemoveRole снимает назначение роли.
func (c *Client) RemoveRole(ctx context.Context, rawToken, userID, roleID string) error {
	q := url.Values{"user_id": {userID}, "role_id": {roleID}}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		c.baseURL+"/user-roles?"+q.Encode(), nil)
	if err != nil {
		return apperr.Wrap(apperr.ErrUpstream, "guardian request build: %v", err)
	}
	c.forwardCredential(req, rawToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.ErrUpstream, "guardian unreachable")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return apperr.Wrap(apperr.ErrNotFound, "role assignment")
	default:
		logs.Logger.Errorf("guardian remove role status %d", resp.StatusCode)
		return apperr.Wrap(apperr.ErrUpstream, "guardian returned status %d", resp.StatusCode)
	}
}

// RoleDetails тянет полное описание роли; при сбое отдаёт минимальную
// заглушку, чтобы список ролей не разваливался из-за одной записи.
func (c *Client) RoleDetails(ctx context.Context, rawToken, roleID string) map[string]any {
	stub := map[string]any{
		"id":          roleID,
		"name":        fmt.Sprintf("Unknown Role (%s)", roleID),
		"description": "Role details unavailable",
	}
	data, err := c.get(ctx, rawToken, "/roles/"+url.PathEscape(roleID))
	if err != nil {
		return stub
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return stub
	}
	return out
}

// ListPolicies агрегирует политики всех ролей пользователя, без дублей.
func (c *Client) ListPolicies(ctx context.Context, rawToken, userID string) ([]map[string]any, error) {
	roles, err := c.ListRoles(ctx, rawToken, userID)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	policies := []map[string]any{}
	for _, role := range roles {
		roleID := stringField(role, "role_id")
		if roleID == "" {
			logs.Logger.Warnf("user role without role_id: %v", role)
			continue
		}
		data, err := c.get(ctx, rawToken, "/roles/"+url.PathEscape(roleID)+"/policies")
		if err != nil {
			// роль могла исчезнуть на стороне Guardian — пропускаем
			logs.Logger.Warnf("policies for role %s unavailable: %v", roleID, err)
			continue
		}
		list, err := normalizeList(data, "policies")
		if err != nil {
			continue
		}
		for _, p := range list {
			id := stringField(p, "id")
			if id != "" && !seen[id] {
				seen[id] = true
				policies = append(policies, p)
			}
		}
	}
	return policies, nil
}

// ListPermissions — полный fan-out: роли → политики → права, без дублей.
func (c *Client) ListPermissions(ctx context.Context, rawToken, userID string) ([]map[string]any, error) {
	policies, err := c.ListPolicies(ctx, rawToken, userID)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	perms := []map[string]any{}
	for _, policy := range policies {
		policyID := stringField(policy, "id")
		if policyID == "" {
			continue
		}
		data, err := c.get(ctx, rawToken, "/policies/"+url.PathEscape(policyID)+"/permissions")
		if err != nil {
			logs.Logger.Warnf("permissions for policy %s unavailable: %v", policyID, err)
			continue
		}
		list, err := normalizeList(data, "permissions")
		if err != nil {
			continue
		}
		for _, p := range list {
			id := stringField(p, "id")
			if id != "" && !seen[id] {
				seen[id] = true
				perms = append(perms, p)
			}
		}
	}
	return perms, nil
}

func (c *Client) get(ctx context.Context, rawToken, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrUpstream, "guardian request build: %v", err)
	}
	c.forwardCredential(req, rawToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrUpstream, "guardian unreachable")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Wrap(apperr.ErrUpstream, "guardian returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) forwardCredential(req *http.Request, rawToken string) {
	if rawToken != "" {
		req.AddCookie(&http.Cookie{Name: c.cookieName, Value: rawToken})
	}
}

// normalizeList сводит две формы ответа Guardian к одной:
// либо голый список, либо объект с ключом-обёрткой ({"roles": [...]}).
func normalizeList(data []byte, key string) ([]map[string]any, error) {
	var direct []map[string]any
	if err := json.Unmarshal(data, &direct); err == nil {
		return direct, nil
	}
	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(data, &wrapped); err == nil {
		if inner, ok := wrapped[key]; ok {
			var list []map[string]any
			if err := json.Unmarshal(inner, &list); err == nil {
				return list, nil
			}
		}
	}
	logs.Logger.Warnf("unexpected %s response shape from guardian", key)
	return nil, apperr.Wrap(apperr.ErrUpstream, "guardian malformed %s response", key)
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
