package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
)

// Sample corpus: the TechCorp employee handbook pair used by the
// default validation suite. Content is Spanish; the validation
// questions reference specific facts in these documents.
const samplePolicyManual = `Manual de Políticas de la Empresa TechCorp

1. POLÍTICAS DE TRABAJO REMOTO

1.1 Elegibilidad
Los empleados pueden trabajar de forma remota si:
- Han completado al menos 6 meses en la empresa
- Su supervisor directo aprueba la solicitud
- Su rol permite trabajo remoto efectivo

1.2 Horarios de Trabajo
- Horario flexible entre 7:00 AM y 7:00 PM
- Mínimo 6 horas de solapamiento con el equipo
- Disponibilidad para reuniones importantes

2. POLÍTICAS DE VACACIONES

2.1 Días de Vacaciones
- Empleados nuevos: 15 días al año
- Empleados con 2+ años: 20 días al año
- Empleados con 5+ años: 25 días al año

2.2 Solicitud de Vacaciones
- Solicitar con al menos 2 semanas de anticipación
- Aprobación requerida del supervisor
- No más de 10 días consecutivos sin aprobación especial

3. CÓDIGO DE CONDUCTA

3.1 Principios Básicos
- Respeto mutuo entre colegas
- Confidencialidad de información empresarial
- Profesionalismo en todas las interacciones

3.2 Uso de Tecnología
- Equipos de la empresa solo para uso profesional
- Prohibido instalar software no autorizado
- Reportar inmediatamente cualquier problema de seguridad
`

const sampleDevGuide = `Guía de Desarrollo de Software - TechCorp

1. ESTÁNDARES DE CÓDIGO

1.1 Lenguajes de Programación
- Python: Seguir PEP 8
- JavaScript: Usar ESLint con configuración estándar
- Java: Seguir Google Java Style Guide

1.2 Documentación
- Todos los métodos públicos deben tener docstrings
- README.md obligatorio en cada repositorio
- Comentarios en código complejo

2. CONTROL DE VERSIONES

2.1 Git Workflow
- Usar GitFlow para manejo de ramas
- Commits descriptivos y atómicos
- Pull requests obligatorios para main

2.2 Revisión de Código
- Al menos 2 revisores para cambios críticos
- Ejecutar tests antes de merge
- Revisar seguridad y performance

3. TESTING

3.1 Cobertura de Tests
- Mínimo 80% de cobertura de código
- Tests unitarios para toda lógica de negocio
- Tests de integración para APIs

3.2 Automatización
- CI/CD pipeline configurado
- Tests automáticos en cada PR
- Deploy automático a staging

4. SEGURIDAD

4.1 Mejores Prácticas
- Nunca hardcodear credenciales
- Usar variables de entorno para configuración
- Validar todas las entradas de usuario

4.2 Dependencias
- Mantener dependencias actualizadas
- Escaneo de vulnerabilidades semanal
- Usar herramientas como Snyk o OWASP

5. DEPLOYMENT

5.1 Ambientes
- Development: Para desarrollo local
- Staging: Para testing de QA
- Production: Ambiente productivo

5.2 Proceso de Deploy
- Deploy solo desde rama main
- Backup antes de cada deploy a producción
- Rollback plan siempre disponible
`

// WriteSampleCorpus writes the bundled sample documents into dir,
// creating it if needed. Existing files are left untouched so a
// user-modified sample corpus survives re-runs.
func WriteSampleCorpus(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create sample directory: %w", err)
	}

	files := map[string]string{
		"manual_politicas.txt": samplePolicyManual,
		"guia_desarrollo.txt":  sampleDevGuide,
	}

	var written []string
	for name, content := range files {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", name, err)
		}
		written = append(written, path)
	}
	return written, nil
}
