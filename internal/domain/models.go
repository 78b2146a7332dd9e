package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns a new UUID when the caller did not set one
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// User represents a CRM user. Users are referenced as owners and actors;
// there is no authentication.
type User struct {
	BaseModel
	Name  string `gorm:"type:varchar(200);not null"`
	Email string `gorm:"type:varchar(255);not null;uniqueIndex"`
	Role  string `gorm:"type:varchar(50);not null;default:'sales'"`
}

// Account represents an organization in the CRM
type Account struct {
	BaseModel
	Name     string     `gorm:"type:varchar(200);not null;index"`
	Industry string     `gorm:"type:varchar(100)"`
	Website  string     `gorm:"type:varchar(500)"`
	Phone    string     `gorm:"type:varchar(50)"`
	Email    string     `gorm:"type:varchar(255)"`
	Address  string     `gorm:"type:varchar(500)"`
	City     string     `gorm:"type:varchar(100)"`
	Country  string     `gorm:"type:varchar(100)"`
	OwnerID  *uuid.UUID `gorm:"type:uuid;index;column:owner_id"`
	Owner    *User      `gorm:"foreignKey:OwnerID"`
}

// Contact represents an individual person, optionally attached to an account
type Contact struct {
	BaseModel
	AccountID *uuid.UUID `gorm:"type:uuid;index;column:account_id"`
	Account   *Account   `gorm:"foreignKey:AccountID"`
	FirstName string     `gorm:"type:varchar(100);not null;column:first_name"`
	LastName  string     `gorm:"type:varchar(100);not null;column:last_name"`
	Email     string     `gorm:"type:varchar(255);index"`
	Phone     string     `gorm:"type:varchar(50)"`
	Title     string     `gorm:"type:varchar(100)"`
	OwnerID   *uuid.UUID `gorm:"type:uuid;column:owner_id"`
}

// FullName returns the contact's full name
func (c *Contact) FullName() string {
	return c.FirstName + " " + c.LastName
}

// LeadStatus represents the qualification status of a lead
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusConverted LeadStatus = "converted"
	LeadStatusLost      LeadStatus = "lost"
)

// IsValid checks if the LeadStatus is a valid enum value
func (s LeadStatus) IsValid() bool {
	switch s {
	case LeadStatusNew, LeadStatusContacted, LeadStatusQualified, LeadStatusConverted, LeadStatusLost:
		return true
	}
	return false
}

// Lead represents a prospective customer that may be converted into
// one or more opportunities
type Lead struct {
	BaseModel
	FirstName string     `gorm:"type:varchar(100);not null;column:first_name"`
	LastName  string     `gorm:"type:varchar(100);not null;column:last_name"`
	Email     string     `gorm:"type:varchar(255);not null;uniqueIndex"`
	Phone     string     `gorm:"type:varchar(50)"`
	Company   string     `gorm:"type:varchar(200)"`
	Title     string     `gorm:"type:varchar(100)"`
	Source    string     `gorm:"type:varchar(100)"`
	Status    LeadStatus `gorm:"type:varchar(50);not null;default:'new';index"`
	OwnerID   *uuid.UUID `gorm:"type:uuid;index;column:owner_id"`
	Owner     *User      `gorm:"foreignKey:OwnerID"`
}

// Product represents a sellable catalog entry. Its type selects the pricing formula.
type Product struct {
	BaseModel
	Name        string      `gorm:"type:varchar(200);not null"`
	Type        ProductType `gorm:"type:varchar(50);not null"`
	Price       float64     `gorm:"type:decimal(15,2);not null;default:0"`
	Description string      `gorm:"type:text"`
	IsActive    bool        `gorm:"not null;default:true;column:is_active"`
}

// Opportunity represents a sales deal in the pipeline. Value and GrossProfit are
// stored roll-ups of the opportunity's order items (or a manual override);
// weighted value is never stored.
type Opportunity struct {
	BaseModel
	AccountID         *uuid.UUID       `gorm:"type:uuid;index;column:account_id"`
	Account           *Account         `gorm:"foreignKey:AccountID"`
	ContactID         *uuid.UUID       `gorm:"type:uuid;index;column:contact_id"`
	Contact           *Contact         `gorm:"foreignKey:ContactID"`
	LeadID            *uuid.UUID       `gorm:"type:uuid;index;column:lead_id"`
	Name              string           `gorm:"type:varchar(200);not null"`
	Description       string           `gorm:"type:text"`
	Stage             OpportunityStage `gorm:"type:varchar(50);not null;default:'prospecting';index"`
	Probability       int              `gorm:"type:int;not null;default:0"`
	Value             float64          `gorm:"type:decimal(15,2);not null;default:0"`
	GrossProfit       float64          `gorm:"type:decimal(15,2);not null;default:0;column:gross_profit"`
	GrossProfitMargin int              `gorm:"type:int;not null;default:0;column:gross_profit_margin"`
	CloseDate         *time.Time       `gorm:"type:date;column:close_date"`
	LeadSource        string           `gorm:"type:varchar(100);column:lead_source"`
	OwnerID           *uuid.UUID       `gorm:"type:uuid;index;column:owner_id"`
	Owner             *User            `gorm:"foreignKey:OwnerID"`
	Orders            []Order          `gorm:"foreignKey:OpportunityID"`
	StageLogs         []StageChangeLog `gorm:"foreignKey:OpportunityID"`
}

// OrderStatus represents the fulfilment status of an order
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "draft"
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsValid checks if the OrderStatus is a valid enum value
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusDraft, OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Order belongs to exactly one opportunity. TotalAmount is the stored sum of
// its items' TotalProposal.
type Order struct {
	BaseModel
	OpportunityID uuid.UUID    `gorm:"type:uuid;not null;index;column:opportunity_id"`
	Opportunity   *Opportunity `gorm:"foreignKey:OpportunityID"`
	OrderNumber   string       `gorm:"type:varchar(50);not null;uniqueIndex;column:order_number"`
	TotalAmount   float64      `gorm:"type:decimal(15,2);not null;default:0;column:total_amount"`
	Status        OrderStatus  `gorm:"type:varchar(50);not null;default:'draft'"`
	OrderDate     time.Time    `gorm:"type:date;not null;column:order_date"`
	Items         []OrderItem  `gorm:"foreignKey:OrderID"`
}

// OrderItem is a priced line of an order. TotalCost and TotalProposal are
// computed by the pricing engine at write time and stored.
type OrderItem struct {
	BaseModel
	OrderID       uuid.UUID  `gorm:"type:uuid;not null;index;column:order_id"`
	Order         *Order     `gorm:"foreignKey:OrderID"`
	ProductID     uuid.UUID  `gorm:"type:uuid;not null;index;column:product_id"`
	Product       *Product   `gorm:"foreignKey:ProductID"`
	Quantity      int        `gorm:"type:int;not null;default:1"`
	CostValue     float64    `gorm:"type:decimal(15,2);not null;default:0;column:cost_value"`
	ProposalValue float64    `gorm:"type:decimal(15,2);not null;default:0;column:proposal_value"`
	Discount      float64    `gorm:"type:decimal(5,2);not null;default:0"`
	StartDate     *time.Time `gorm:"type:date;column:start_date"`
	EndDate       *time.Time `gorm:"type:date;column:end_date"`
	TotalCost     float64    `gorm:"type:decimal(15,2);not null;default:0;column:total_cost"`
	TotalProposal float64    `gorm:"type:decimal(15,2);not null;default:0;column:total_proposal"`
}

// StageChangeLog is an append-only record of one stage transition
type StageChangeLog struct {
	ID            uuid.UUID         `gorm:"type:uuid;primaryKey"`
	OpportunityID uuid.UUID         `gorm:"type:uuid;not null;index;column:opportunity_id"`
	FromStage     *OpportunityStage `gorm:"type:varchar(50);column:from_stage"`
	ToStage       OpportunityStage  `gorm:"type:varchar(50);not null;column:to_stage"`
	ChangedByID   *uuid.UUID        `gorm:"type:uuid;column:changed_by_id"`
	ChangedBy     *User             `gorm:"foreignKey:ChangedByID"`
	Reason        string            `gorm:"type:text;not null"`
	CreatedAt     time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP;index"`
}

// BeforeCreate assigns a new UUID when the caller did not set one
func (l *StageChangeLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// ActivityType represents the type of activity
type ActivityType string

const (
	ActivityTypeCall        ActivityType = "call"
	ActivityTypeEmail       ActivityType = "email"
	ActivityTypeMeeting     ActivityType = "meeting"
	ActivityTypeTask        ActivityType = "task"
	ActivityTypeNote        ActivityType = "note"
	ActivityTypeStageChange ActivityType = "stage_change"
)

// IsValid checks if the ActivityType is a valid enum value
func (at ActivityType) IsValid() bool {
	switch at {
	case ActivityTypeCall, ActivityTypeEmail, ActivityTypeMeeting, ActivityTypeTask, ActivityTypeNote, ActivityTypeStageChange:
		return true
	}
	return false
}

// Activity represents an event log entry attached to any CRM entity
type Activity struct {
	BaseModel
	Type          ActivityType `gorm:"type:varchar(50);not null;default:'note';index"`
	Subject       string       `gorm:"type:varchar(300);not null"`
	Description   string       `gorm:"type:text"`
	OpportunityID *uuid.UUID   `gorm:"type:uuid;index;column:opportunity_id"`
	LeadID        *uuid.UUID   `gorm:"type:uuid;index;column:lead_id"`
	AccountID     *uuid.UUID   `gorm:"type:uuid;index;column:account_id"`
	ContactID     *uuid.UUID   `gorm:"type:uuid;index;column:contact_id"`
	DueDate       *time.Time   `gorm:"type:date;column:due_date"`
	Completed     bool         `gorm:"not null;default:false"`
	CreatedByID   *uuid.UUID   `gorm:"type:uuid;column:created_by_id"`
	CreatedBy     *User        `gorm:"foreignKey:CreatedByID"`
}

// Note is free text attached to a lead, opportunity, account or contact
type Note struct {
	BaseModel
	Content       string     `gorm:"type:text;not null"`
	LeadID        *uuid.UUID `gorm:"type:uuid;index;column:lead_id"`
	OpportunityID *uuid.UUID `gorm:"type:uuid;index;column:opportunity_id"`
	AccountID     *uuid.UUID `gorm:"type:uuid;index;column:account_id"`
	ContactID     *uuid.UUID `gorm:"type:uuid;index;column:contact_id"`
	CreatedByID   *uuid.UUID `gorm:"type:uuid;column:created_by_id"`
}

// NumberSequence tracks the last issued sequence per scope and year
type NumberSequence struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	Scope        string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_number_sequence_scope_year"`
	Year         int       `gorm:"not null;uniqueIndex:idx_number_sequence_scope_year"`
	LastSequence int       `gorm:"not null;default:0;column:last_sequence"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}
