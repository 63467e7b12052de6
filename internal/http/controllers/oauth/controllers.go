package oauth

import svc "github.com/dropDatabas3/idcore/internal/http/services/oauth"

// Controllers agrupa los controllers del dominio oauth.
type Controllers struct {
	Token      *TokenController
	Revoke     *RevokeController
	Introspect *IntrospectController
	Clients    *ClientController
	Grants     *GrantController
}

// NewControllers crea los controllers a partir de los services del dominio.
func NewControllers(s svc.Services) Controllers {
	return Controllers{
		Token:      NewTokenController(s.Tokens),
		Revoke:     NewRevokeController(s.Clients, s.Revoke),
		Introspect: NewIntrospectController(s.Clients, s.Introspect),
		Clients:    NewClientController(s.Clients),
		Grants:     NewGrantController(s.Grants),
	}
}
