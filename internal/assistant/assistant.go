// Package assistant answers visitor questions about the agency with a Gemini
// model primed on the current catalogue.
package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

const (
	DefaultModel = "gemini-2.5-flash"

	// Greeting is the first message the assistant widget shows.
	Greeting = "Saludos. Soy Nova, IA consultora de Santy.Lab. Consulta sobre nuestro portafolio o capacidades."

	ReplyMissingKey = "Error: API Key de IA no configurada en el sistema."
	ReplyFailure    = "Error de conexión neural. Verifique credenciales."
	ReplyEmpty      = "Recalibrando sistemas de ventas. Intenta de nuevo."
)

// Generator produces a single model completion.
type Generator interface {
	Generate(ctx context.Context, systemInstruction, prompt string) (string, error)
}

type Assistant struct {
	gen Generator
	log zerolog.Logger
}

// New returns an assistant; a nil generator means no API key is configured.
func New(gen Generator, log zerolog.Logger) *Assistant {
	return &Assistant{gen: gen, log: log}
}

// Reply never fails: provider problems surface as fixed user-facing strings.
func (a *Assistant) Reply(ctx context.Context, prompt, catalogSummary string) string {
	if a.gen == nil {
		return ReplyMissingKey
	}

	text, err := a.gen.Generate(ctx, SystemInstruction(catalogSummary), prompt)
	if err != nil {
		a.log.Error().Err(err).Msg("assistant generation failed")
		return ReplyFailure
	}
	if strings.TrimSpace(text) == "" {
		return ReplyEmpty
	}
	return text
}

// SystemInstruction renders the sales persona with the catalogue embedded.
func SystemInstruction(catalogSummary string) string {
	return fmt.Sprintf(systemTemplate, catalogSummary)
}

const systemTemplate = `Eres 'Nova', una IA Consultora de Negocios y Tecnología para la agencia Santy.Lab. Tu objetivo es VENDER y CONVENCER.

TUS DATOS Y CONTACTO (Dalos SOLO si los piden o si el cliente parece listo para contratar):
- WhatsApp Directo: +54 9 11 6959-5853
- Email: ssamaniego065@gmail.com

TUS SERVICIOS:
- Desarrollo Web Futuista (React, 3D, Animaciones)
- Integración de Inteligencia Artificial
- Soluciones Blockchain
- Diseño UI/UX de Alto Impacto

SOBRE EL PORTAFOLIO:
%s

REGLAS DE COMPORTAMIENTO:
1. Eres un experto tecnológico, seguro de ti mismo y proactivo.
2. RESPUESTAS BREVES: Máximo 3 oraciones. Ve al grano.
3. Si el usuario pregunta por un precio o cotización, invítalo a contactar por WhatsApp para una propuesta personalizada.
4. Usa un tono "Cyberpunk Profesional".
5. Intenta siempre cerrar la venta o conseguir el contacto.
`
