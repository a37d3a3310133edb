package identity

import "errors"

var (
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailInUse         = errors.New("email already in use")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrWeakPassword       = errors.New("password too short")
	ErrInvalidName        = errors.New("display name too short")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrTokenRevoked       = errors.New("token has been revoked")
)

// friendlyMessages are shown to the user in place of the raw error text.
var friendlyMessages = []struct {
	err error
	msg string
}{
	{ErrUnauthenticated, "Você precisa estar logado para realizar esta ação."},
	{ErrInvalidCredentials, "E-mail ou senha inválidos."},
	{ErrEmailInUse, "Este e-mail já está em uso."},
	{ErrInvalidEmail, "O e-mail informado é inválido."},
	{ErrWeakPassword, "A senha deve ter pelo menos 6 caracteres."},
	{ErrInvalidName, "O nome deve ter pelo menos 2 caracteres."},
	{ErrUserNotFound, "Usuário não encontrado."},
	{ErrExpiredToken, "Sua sessão expirou. Entre novamente."},
	{ErrTokenRevoked, "Sua sessão foi encerrada. Entre novamente."},
	{ErrInvalidToken, "Sessão inválida. Entre novamente."},
}

// FriendlyMessage maps an authentication error to a localized message. The
// second result is false for errors that do not belong to this package.
func FriendlyMessage(err error) (string, bool) {
	for _, fm := range friendlyMessages {
		if errors.Is(err, fm.err) {
			return fm.msg, true
		}
	}
	return "Ocorreu um erro de autenticação. Tente novamente.", false
}
