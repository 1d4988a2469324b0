package herd

import (
	"time"

	"github.com/shopspring/decimal"
)

// Jerarquía de contención estricta: Farm > Paddock > Lot > Animal.
// Nada se borra físicamente; DeletedAt marca el soft-delete para que
// movimientos y genealogía históricos sigan resolviendo.

type Farm struct {
	ID   int64
	Name string

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

type Paddock struct {
	ID     int64
	FarmID int64
	Name   string

	// Boundary es un polígono GeoJSON opcional; AreaHectares se deriva de él.
	Boundary     []byte
	AreaHectares float64

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

type LotStatus string

const (
	LotStatusActive   LotStatus = "active"
	LotStatusInactive LotStatus = "inactive"
	LotStatusDeleted  LotStatus = "deleted"
)

type Lot struct {
	ID        int64
	PaddockID int64 // ubicación actual (desnormalizada, se actualiza junto al ledger)
	Name      string
	Status    LotStatus

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// Sex define el sexo del animal.
// @Enum female, male
type Sex string

const (
	SexFemale Sex = "female"
	SexMale   Sex = "male"
)

// Cada dimensión de estado es mutuamente excluyente dentro de sí misma.

type LifeStatus string

const (
	LifeActive  LifeStatus = "active"
	LifeMissing LifeStatus = "missing"
	LifeSold    LifeStatus = "sold"
	LifeDead    LifeStatus = "dead"
	LifeDeleted LifeStatus = "deleted"
)

type ProductionStatus string

const (
	ProductionNone      ProductionStatus = "none"
	ProductionGrowing   ProductionStatus = "growing"
	ProductionLactating ProductionStatus = "lactating"
	ProductionDry       ProductionStatus = "dry"
	ProductionFattening ProductionStatus = "fattening"
)

type HealthStatus string

const (
	HealthHealthy     HealthStatus = "healthy"
	HealthSick        HealthStatus = "sick"
	HealthInTreatment HealthStatus = "in_treatment"
)

type ReproductiveStatus string

const (
	ReproductiveOpen        ReproductiveStatus = "open"
	ReproductiveInseminated ReproductiveStatus = "inseminated"
	ReproductivePregnant    ReproductiveStatus = "pregnant"
	ReproductivePostpartum  ReproductiveStatus = "postpartum"
)

type Status struct {
	Life         LifeStatus
	Production   ProductionStatus
	Health       HealthStatus
	Reproductive ReproductiveStatus
}

// Animal es el nodo del grafo genealógico. MotherID/FatherID son
// auto-referencias opcionales; la ausencia de ciclos no está garantizada.
type Animal struct {
	ID           int64
	Tag          string // caravana visible
	PedigreeCode string // único
	Name         string

	Sex       Sex
	BirthDate *time.Time
	Breed     string
	Color     string

	Status Status

	MotherID *int64
	FatherID *int64

	LotID int64 // ubicación actual

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// Owner es la parte (persona o empresa) que puede tener participación en animales.
type Owner struct {
	ID   int64
	Name string

	CreatedAt time.Time
	DeletedAt *time.Time
}

// AnimalOwner es la fila de participación: SharePercent en (0, 100].
type AnimalOwner struct {
	AnimalID     int64
	OwnerID      int64
	SharePercent decimal.Decimal
}

// EntityKind es la variante cerrada de entidades que se mueven.
type EntityKind string

const (
	EntityAnimal EntityKind = "ANIMAL"
	EntityLot    EntityKind = "LOT"
)

func (k EntityKind) Valid() bool {
	return k == EntityAnimal || k == EntityLot
}

// Movement es inmutable: se crea una vez y nunca se modifica ni borra.
// Animal -> lote, Lot -> potrero. FromID es nil en el alta.
type Movement struct {
	ID          string
	EntityType  EntityKind
	EntityID    int64
	FromID      *int64
	ToID        int64
	MovedAt     time.Time
	Reason      string
	ActorUserID int64
	CreatedAt   time.Time
}

const ReasonRegistration = "registration"

// Int64Ptr es un helper para campos opcionales.
func Int64Ptr(v int64) *int64 { return &v }

func (a Animal) Deleted() bool { return a.DeletedAt != nil || a.Status.Life == LifeDeleted }

func (l Lot) Deleted() bool { return l.DeletedAt != nil || l.Status == LotStatusDeleted }

func (p Paddock) Deleted() bool { return p.DeletedAt != nil }

func (f Farm) Deleted() bool { return f.DeletedAt != nil }
