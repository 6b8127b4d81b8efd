// token emite un JWT firmado para las rutas de escritura del catálogo (/products).
//
// Uso: go run ./cmd/token [user_id] [role]
// Por defecto user_id=cli y role=admin. El secreto, issuer y expiración salen de
// JWT_SECRET, JWT_ISSUER y JWT_EXPIRATION_MINUTES.
package main

import (
	"fmt"
	"os"

	"github.com/jhoicas/Pedidos-api/pkg/config"
	"github.com/jhoicas/Pedidos-api/pkg/jwt"
)

func main() {
	userID, role := "cli", "admin"
	if len(os.Args) > 1 {
		userID = os.Args[1]
	}
	if len(os.Args) > 2 {
		role = os.Args[2]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	if cfg.JWT.Secret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET no está definido; la API no exige token")
		os.Exit(1)
	}

	tok, err := jwt.Generate(cfg.JWT.Secret, userID, role, cfg.JWT.Issuer, cfg.JWT.Expiration)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Generar token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
