package file

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/askdocs-cli/internal/core/domain"
)

// DefaultSuite returns the built-in validation battery. It targets the
// bundled TechCorp sample corpus: the direct questions are answerable
// from it, the adversarial ones reference entities it never mentions.
func DefaultSuite() domain.ValidationSuite {
	return domain.ValidationSuite{
		Markers: []string{
			"no hay información",
			"no contiene",
			"no se encuentra",
			"no se menciona",
			"no dispongo",
			"no information",
		},
		Direct: []domain.DirectQuestion{
			{
				Question:           "¿Cuántos días de vacaciones tienen los empleados nuevos?",
				RequiredSubstrings: []string{"15 días"},
			},
			{
				Question:           "¿Cuál es la cobertura mínima de tests exigida?",
				RequiredSubstrings: []string{"80%"},
			},
			{
				Question:           "¿Qué estándar de código se sigue para Python?",
				RequiredSubstrings: []string{"PEP 8"},
			},
			{
				Question:           "¿Cuántos meses debe llevar un empleado en la empresa para trabajar de forma remota?",
				RequiredSubstrings: []string{"6 meses"},
			},
		},
		Adversarial: []domain.AdversarialQuestion{
			// Forbidden tokens are details a made-up answer would invent,
			// never text a grounded refusal that echoes the question could
			// legitimately contain.
			{
				Question:        "¿Qué cliente del sector salud adquirió VisionBox AI y en qué año lo hizo?",
				ForbiddenTokens: []string{"2019", "2021", "2023", "MediSalud"},
			},
			{
				Question:        "¿Qué descuentos ofrece TechCorp a los clientes de MegaRetail?",
				ForbiddenTokens: []string{"10%", "15%", "20%", "25%"},
			},
		},
	}
}

// LoadSuite reads a validation suite from a TOML file. An empty path
// returns the built-in default suite.
func LoadSuite(path string) (domain.ValidationSuite, error) {
	if path == "" {
		return DefaultSuite(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.ValidationSuite{}, fmt.Errorf("read validation suite: %w", err)
	}

	var suite domain.ValidationSuite
	if err := toml.Unmarshal(data, &suite); err != nil {
		return domain.ValidationSuite{}, fmt.Errorf("parse validation suite: %w", err)
	}

	if suite.Questions() == 0 {
		return domain.ValidationSuite{}, fmt.Errorf("%w: validation suite %s has no questions", domain.ErrInvalidConfig, path)
	}
	if len(suite.Markers) == 0 {
		// Marker wording is environment-specific; fall back to the
		// built-in set rather than failing every adversarial check.
		suite.Markers = DefaultSuite().Markers
	}

	return suite, nil
}

// WriteSuite writes a suite to a TOML file, for users who want to start
// from the default battery and edit it.
func WriteSuite(path string, suite domain.ValidationSuite) error {
	data, err := toml.Marshal(suite)
	if err != nil {
		return fmt.Errorf("marshal validation suite: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
