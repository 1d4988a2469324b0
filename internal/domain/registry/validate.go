package registry

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"

	"livestock-ledger/internal/domain/herd"
)

func parseSex(s string) (herd.Sex, error) {
	switch herd.Sex(strings.ToLower(strings.TrimSpace(s))) {
	case herd.SexFemale:
		return herd.SexFemale, nil
	case herd.SexMale:
		return herd.SexMale, nil
	default:
		return "", herd.Invalid("sex", "must be female or male")
	}
}

// StatusInput llega como strings; vacío => default de la dimensión.
type StatusInput struct {
	Life         string
	Production   string
	Health       string
	Reproductive string
}

var (
	lifeValues = map[herd.LifeStatus]bool{
		herd.LifeActive: true, herd.LifeMissing: true, herd.LifeSold: true, herd.LifeDead: true,
	}
	productionValues = map[herd.ProductionStatus]bool{
		herd.ProductionNone: true, herd.ProductionGrowing: true, herd.ProductionLactating: true,
		herd.ProductionDry: true, herd.ProductionFattening: true,
	}
	healthValues = map[herd.HealthStatus]bool{
		herd.HealthHealthy: true, herd.HealthSick: true, herd.HealthInTreatment: true,
	}
	reproductiveValues = map[herd.ReproductiveStatus]bool{
		herd.ReproductiveOpen: true, herd.ReproductiveInseminated: true,
		herd.ReproductivePregnant: true, herd.ReproductivePostpartum: true,
	}
)

func defaultStatus() herd.Status {
	return herd.Status{
		Life:         herd.LifeActive,
		Production:   herd.ProductionNone,
		Health:       herd.HealthHealthy,
		Reproductive: herd.ReproductiveOpen,
	}
}

// applyStatus pisa sobre base sólo las dimensiones informadas.
// "deleted" no se acepta acá: el borrado tiene su propia operación.
func applyStatus(base herd.Status, in StatusInput, sex herd.Sex) (herd.Status, error) {
	norm := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

	if v := norm(in.Life); v != "" {
		if !lifeValues[herd.LifeStatus(v)] {
			return base, herd.Invalid("status.life", "unknown value "+v)
		}
		base.Life = herd.LifeStatus(v)
	}
	if v := norm(in.Production); v != "" {
		if !productionValues[herd.ProductionStatus(v)] {
			return base, herd.Invalid("status.production", "unknown value "+v)
		}
		base.Production = herd.ProductionStatus(v)
	}
	if v := norm(in.Health); v != "" {
		if !healthValues[herd.HealthStatus(v)] {
			return base, herd.Invalid("status.health", "unknown value "+v)
		}
		base.Health = herd.HealthStatus(v)
	}
	if v := norm(in.Reproductive); v != "" {
		if !reproductiveValues[herd.ReproductiveStatus(v)] {
			return base, herd.Invalid("status.reproductive", "unknown value "+v)
		}
		base.Reproductive = herd.ReproductiveStatus(v)
	}

	if sex == herd.SexMale {
		if base.Reproductive != herd.ReproductiveOpen {
			return base, herd.Invalid("status.reproductive", "only applies to females")
		}
		if base.Production == herd.ProductionLactating {
			return base, herd.Invalid("status.production", "only applies to females")
		}
	}
	return base, nil
}

// parseBoundary acepta un Polygon o MultiPolygon GeoJSON y devuelve la
// geometría normalizada junto con el área en hectáreas.
func parseBoundary(raw json.RawMessage) ([]byte, float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, 0, nil
	}

	g, err := geojson.UnmarshalGeometry(raw)
	if err != nil {
		return nil, 0, herd.Invalid("boundary", "invalid geojson geometry")
	}

	geom := g.Geometry()
	switch t := geom.(type) {
	case orb.Polygon:
		if err := checkPolygon(t); err != nil {
			return nil, 0, err
		}
	case orb.MultiPolygon:
		if len(t) == 0 {
			return nil, 0, herd.Invalid("boundary", "empty multipolygon")
		}
		for _, p := range t {
			if err := checkPolygon(p); err != nil {
				return nil, 0, err
			}
		}
	default:
		return nil, 0, herd.Invalid("boundary", fmt.Sprintf("must be Polygon or MultiPolygon, got %s", geom.GeoJSONType()))
	}

	norm, err := geojson.NewGeometry(geom).MarshalJSON()
	if err != nil {
		return nil, 0, fmt.Errorf("marshal boundary: %w", err)
	}

	// geo.Area devuelve m² (con signo según orientación del anillo)
	hectares := math.Abs(geo.Area(geom)) / 10000
	return norm, math.Round(hectares*10000) / 10000, nil
}

func checkPolygon(p orb.Polygon) error {
	if len(p) == 0 {
		return herd.Invalid("boundary", "polygon without rings")
	}
	for _, ring := range p {
		if len(ring) < 4 || !ring.Closed() {
			return herd.Invalid("boundary", "rings must be closed with at least 4 points")
		}
	}
	return nil
}
