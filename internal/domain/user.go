package domain

// UserRole é um tipo string para representar o papel de quem chama a API.
// O Stockroom não mantém cadastro de usuários: o administrador se autentica
// com a senha compartilhada e recebe um token com RoleAdmin.
type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RolePersonnel UserRole = "personnel"
)

// LoginRequest representa o payload de entrada para o login administrativo.
type LoginRequest struct {
	Password string `json:"password" example:"s3nh4-compartilhada"`
}

// LoginResponse é a resposta de um login bem-sucedido.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"` // segundos
}
