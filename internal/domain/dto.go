package domain

import (
	"github.com/google/uuid"
)

// DTOs for API responses. Timestamps are ISO 8601 strings, calendar dates are YYYY-MM-DD.

type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt string    `json:"createdAt"`
}

type AccountDTO struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Industry  string     `json:"industry,omitempty"`
	Website   string     `json:"website,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	Email     string     `json:"email,omitempty"`
	Address   string     `json:"address,omitempty"`
	City      string     `json:"city,omitempty"`
	Country   string     `json:"country,omitempty"`
	OwnerID   *uuid.UUID `json:"ownerId,omitempty"`
	CreatedAt string     `json:"createdAt"`
	UpdatedAt string     `json:"updatedAt"`
}

type ContactDTO struct {
	ID          uuid.UUID  `json:"id"`
	AccountID   *uuid.UUID `json:"accountId,omitempty"`
	AccountName string     `json:"accountName,omitempty"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	FullName    string     `json:"fullName"`
	Email       string     `json:"email,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	Title       string     `json:"title,omitempty"`
	OwnerID     *uuid.UUID `json:"ownerId,omitempty"`
	CreatedAt   string     `json:"createdAt"`
	UpdatedAt   string     `json:"updatedAt"`
}

type LeadDTO struct {
	ID        uuid.UUID  `json:"id"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone,omitempty"`
	Company   string     `json:"company,omitempty"`
	Title     string     `json:"title,omitempty"`
	Source    string     `json:"source,omitempty"`
	Status    LeadStatus `json:"status"`
	OwnerID   *uuid.UUID `json:"ownerId,omitempty"`
	CreatedAt string     `json:"createdAt"`
	UpdatedAt string     `json:"updatedAt"`
}

type ProductDTO struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Type        ProductType `json:"type"`
	Price       float64     `json:"price"`
	Description string      `json:"description,omitempty"`
	IsActive    bool        `json:"isActive"`
	CreatedAt   string      `json:"createdAt"`
	UpdatedAt   string      `json:"updatedAt"`
}

type OpportunityDTO struct {
	ID                uuid.UUID        `json:"id"`
	AccountID         *uuid.UUID       `json:"accountId,omitempty"`
	ContactID         *uuid.UUID       `json:"contactId,omitempty"`
	LeadID            *uuid.UUID       `json:"leadId,omitempty"`
	Name              string           `json:"name"`
	Description       string           `json:"description,omitempty"`
	Stage             OpportunityStage `json:"stage"`
	StageOrder        int              `json:"stageOrder"`
	IsClosed          bool             `json:"isClosed"`
	Probability       int              `json:"probability"`
	Value             float64          `json:"value"`
	GrossProfit       float64          `json:"grossProfit"`
	GrossProfitMargin int              `json:"grossProfitMargin"`
	WeightedValue     float64          `json:"weightedValue"`
	CloseDate         *string          `json:"closeDate,omitempty"`
	LeadSource        string           `json:"leadSource,omitempty"`
	OwnerID           *uuid.UUID       `json:"ownerId,omitempty"`
	CreatedAt         string           `json:"createdAt"`
	UpdatedAt         string           `json:"updatedAt"`
}

// OpportunityWithRelationsDTO embeds everything the opportunity detail view needs
type OpportunityWithRelationsDTO struct {
	OpportunityDTO
	Account    *AccountDTO         `json:"account,omitempty"`
	Contact    *ContactDTO         `json:"contact,omitempty"`
	Owner      *UserDTO            `json:"owner,omitempty"`
	Orders     []OrderDTO          `json:"orders"`
	StageLogs  []StageChangeLogDTO `json:"stageLogs"`
	Activities []ActivityDTO       `json:"activities"`
}

type OrderDTO struct {
	ID            uuid.UUID      `json:"id"`
	OpportunityID uuid.UUID      `json:"opportunityId"`
	OrderNumber   string         `json:"orderNumber"`
	TotalAmount   float64        `json:"totalAmount"`
	Status        OrderStatus    `json:"status"`
	OrderDate     string         `json:"orderDate"`
	Items         []OrderItemDTO `json:"items"`
	CreatedAt     string         `json:"createdAt"`
	UpdatedAt     string         `json:"updatedAt"`
}

type OrderItemDTO struct {
	ID            uuid.UUID   `json:"id"`
	OrderID       uuid.UUID   `json:"orderId"`
	ProductID     uuid.UUID   `json:"productId"`
	Product       *ProductDTO `json:"product,omitempty"`
	Quantity      int         `json:"quantity"`
	CostValue     float64     `json:"costValue"`
	ProposalValue float64     `json:"proposalValue"`
	Discount      float64     `json:"discount"`
	StartDate     *string     `json:"startDate,omitempty"`
	EndDate       *string     `json:"endDate,omitempty"`
	TotalCost     float64     `json:"totalCost"`
	TotalProposal float64     `json:"totalProposal"`
}

type StageChangeLogDTO struct {
	ID            uuid.UUID         `json:"id"`
	OpportunityID uuid.UUID         `json:"opportunityId"`
	FromStage     *OpportunityStage `json:"fromStage,omitempty"`
	ToStage       OpportunityStage  `json:"toStage"`
	ChangedBy     *uuid.UUID        `json:"changedBy,omitempty"`
	User          *UserDTO          `json:"user,omitempty"`
	Reason        string            `json:"reason"`
	CreatedAt     string            `json:"createdAt"`
}

type ActivityDTO struct {
	ID            uuid.UUID    `json:"id"`
	Type          ActivityType `json:"type"`
	Subject       string       `json:"subject"`
	Description   string       `json:"description,omitempty"`
	OpportunityID *uuid.UUID   `json:"opportunityId,omitempty"`
	LeadID        *uuid.UUID   `json:"leadId,omitempty"`
	AccountID     *uuid.UUID   `json:"accountId,omitempty"`
	ContactID     *uuid.UUID   `json:"contactId,omitempty"`
	DueDate       *string      `json:"dueDate,omitempty"`
	Completed     bool         `json:"completed"`
	CreatedBy     *uuid.UUID   `json:"createdBy,omitempty"`
	CreatedAt     string       `json:"createdAt"`
}

type NoteDTO struct {
	ID            uuid.UUID  `json:"id"`
	Content       string     `json:"content"`
	LeadID        *uuid.UUID `json:"leadId,omitempty"`
	OpportunityID *uuid.UUID `json:"opportunityId,omitempty"`
	AccountID     *uuid.UUID `json:"accountId,omitempty"`
	ContactID     *uuid.UUID `json:"contactId,omitempty"`
	CreatedBy     *uuid.UUID `json:"createdBy,omitempty"`
	CreatedAt     string     `json:"createdAt"`
	UpdatedAt     string     `json:"updatedAt"`
}

// StageTransitionDTO is returned by a successful stage transition
type StageTransitionDTO struct {
	Opportunity OpportunityDTO    `json:"opportunity"`
	StageLog    StageChangeLogDTO `json:"stageLog"`
}

// LeadConversionDTO is returned by a lead conversion. Contact is set when
// a contact was created or linked during the conversion.
type LeadConversionDTO struct {
	Opportunity    OpportunityDTO `json:"opportunity"`
	Contact        *ContactDTO    `json:"contact,omitempty"`
	ContactCreated bool           `json:"contactCreated"`
}

// StageMetricsDTO is the pipeline breakdown for one stage
type StageMetricsDTO struct {
	Stage         OpportunityStage `json:"stage"`
	DisplayOrder  int              `json:"displayOrder"`
	Count         int64            `json:"count"`
	Value         float64          `json:"value"`
	WeightedValue float64          `json:"weightedValue"`
}

// DashboardMetricsDTO holds the aggregated pipeline figures
type DashboardMetricsDTO struct {
	TotalAccounts         int64                `json:"totalAccounts"`
	TotalContacts         int64                `json:"totalContacts"`
	TotalLeads            int64                `json:"totalLeads"`
	LeadsByStatus         map[LeadStatus]int64 `json:"leadsByStatus"`
	OpenOpportunities     int64                `json:"openOpportunities"`
	PipelineValue         float64              `json:"pipelineValue"`
	WeightedPipelineValue float64              `json:"weightedPipelineValue"`
	WonCount              int64                `json:"wonCount"`
	WonValue              float64              `json:"wonValue"`
	LostCount             int64                `json:"lostCount"`
	LostValue             float64              `json:"lostValue"`
	WinRate               float64              `json:"winRate"`
	Stages                []StageMetricsDTO    `json:"stages"`
}

// PaginatedResponse represents a paginated API response
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// User request DTOs
type CreateUserRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	Email string `json:"email" validate:"required,email,max=255"`
	Role  string `json:"role,omitempty" validate:"max=50"`
}

// Account request DTOs
type CreateAccountRequest struct {
	Name     string     `json:"name" validate:"required,max=200"`
	Industry string     `json:"industry,omitempty" validate:"max=100"`
	Website  string     `json:"website,omitempty" validate:"max=500"`
	Phone    string     `json:"phone,omitempty" validate:"max=50"`
	Email    string     `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Address  string     `json:"address,omitempty" validate:"max=500"`
	City     string     `json:"city,omitempty" validate:"max=100"`
	Country  string     `json:"country,omitempty" validate:"max=100"`
	OwnerID  *uuid.UUID `json:"ownerId,omitempty"`
}

type UpdateAccountRequest struct {
	Name     *string    `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Industry *string    `json:"industry,omitempty" validate:"omitempty,max=100"`
	Website  *string    `json:"website,omitempty" validate:"omitempty,max=500"`
	Phone    *string    `json:"phone,omitempty" validate:"omitempty,max=50"`
	Email    *string    `json:"email,omitempty" validate:"omitempty,max=255"`
	Address  *string    `json:"address,omitempty" validate:"omitempty,max=500"`
	City     *string    `json:"city,omitempty" validate:"omitempty,max=100"`
	Country  *string    `json:"country,omitempty" validate:"omitempty,max=100"`
	OwnerID  *uuid.UUID `json:"ownerId,omitempty"`
}

// Contact request DTOs
type CreateContactRequest struct {
	AccountID *uuid.UUID `json:"accountId,omitempty"`
	FirstName string     `json:"firstName" validate:"required,max=100"`
	LastName  string     `json:"lastName" validate:"required,max=100"`
	Email     string     `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Phone     string     `json:"phone,omitempty" validate:"max=50"`
	Title     string     `json:"title,omitempty" validate:"max=100"`
	OwnerID   *uuid.UUID `json:"ownerId,omitempty"`
}

type UpdateContactRequest struct {
	AccountID *uuid.UUID `json:"accountId,omitempty"`
	FirstName *string    `json:"firstName,omitempty" validate:"omitempty,min=1,max=100"`
	LastName  *string    `json:"lastName,omitempty" validate:"omitempty,min=1,max=100"`
	Email     *string    `json:"email,omitempty" validate:"omitempty,max=255"`
	Phone     *string    `json:"phone,omitempty" validate:"omitempty,max=50"`
	Title     *string    `json:"title,omitempty" validate:"omitempty,max=100"`
	OwnerID   *uuid.UUID `json:"ownerId,omitempty"`
}

// Lead request DTOs
type CreateLeadRequest struct {
	FirstName string     `json:"firstName" validate:"required,max=100"`
	LastName  string     `json:"lastName" validate:"required,max=100"`
	Email     string     `json:"email" validate:"required,email,max=255"`
	Phone     string     `json:"phone,omitempty" validate:"max=50"`
	Company   string     `json:"company,omitempty" validate:"max=200"`
	Title     string     `json:"title,omitempty" validate:"max=100"`
	Source    string     `json:"source,omitempty" validate:"max=100"`
	Status    LeadStatus `json:"status,omitempty" validate:"omitempty,oneof=new contacted qualified converted lost"`
	OwnerID   *uuid.UUID `json:"ownerId,omitempty"`
}

type UpdateLeadRequest struct {
	FirstName *string     `json:"firstName,omitempty" validate:"omitempty,min=1,max=100"`
	LastName  *string     `json:"lastName,omitempty" validate:"omitempty,min=1,max=100"`
	Email     *string     `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Phone     *string     `json:"phone,omitempty" validate:"omitempty,max=50"`
	Company   *string     `json:"company,omitempty" validate:"omitempty,max=200"`
	Title     *string     `json:"title,omitempty" validate:"omitempty,max=100"`
	Source    *string     `json:"source,omitempty" validate:"omitempty,max=100"`
	Status    *LeadStatus `json:"status,omitempty" validate:"omitempty,oneof=new contacted qualified converted lost"`
	OwnerID   *uuid.UUID  `json:"ownerId,omitempty"`
}

// ConvertLeadRequest carries the opportunity fields chosen during conversion.
// CreateContact defaults to true when an account is chosen without a contact.
type ConvertLeadRequest struct {
	Name          string           `json:"name" validate:"max=200"`
	Description   string           `json:"description,omitempty"`
	Value         *float64         `json:"value,omitempty" validate:"omitempty,gte=0"`
	Stage         OpportunityStage `json:"stage,omitempty"`
	Probability   *int             `json:"probability,omitempty" validate:"omitempty,min=0,max=100"`
	CloseDate     string           `json:"closeDate,omitempty"`
	AccountID     *uuid.UUID       `json:"accountId,omitempty"`
	ContactID     *uuid.UUID       `json:"contactId,omitempty"`
	CreateContact *bool            `json:"createContact,omitempty"`
	OwnerID       *uuid.UUID       `json:"ownerId,omitempty"`
}

// Product request DTOs
type CreateProductRequest struct {
	Name        string      `json:"name" validate:"required,max=200"`
	Type        ProductType `json:"type" validate:"required,oneof=onetime subscription service-based"`
	Price       float64     `json:"price" validate:"gte=0"`
	Description string      `json:"description,omitempty"`
	IsActive    *bool       `json:"isActive,omitempty"`
}

type UpdateProductRequest struct {
	Name        *string      `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Type        *ProductType `json:"type,omitempty" validate:"omitempty,oneof=onetime subscription service-based"`
	Price       *float64     `json:"price,omitempty" validate:"omitempty,gte=0"`
	Description *string      `json:"description,omitempty"`
	IsActive    *bool        `json:"isActive,omitempty"`
}

// Opportunity request DTOs
type CreateOpportunityRequest struct {
	AccountID   *uuid.UUID       `json:"accountId,omitempty"`
	ContactID   *uuid.UUID       `json:"contactId,omitempty"`
	LeadID      *uuid.UUID       `json:"leadId,omitempty"`
	Name        string           `json:"name" validate:"required,max=200"`
	Description string           `json:"description,omitempty"`
	Stage       OpportunityStage `json:"stage,omitempty"`
	Probability *int             `json:"probability,omitempty" validate:"omitempty,min=0,max=100"`
	Value       *float64         `json:"value,omitempty" validate:"omitempty,gte=0"`
	GrossProfit *float64         `json:"grossProfit,omitempty"`
	CloseDate   string           `json:"closeDate,omitempty"`
	LeadSource  string           `json:"leadSource,omitempty" validate:"max=100"`
	OwnerID     *uuid.UUID       `json:"ownerId,omitempty"`
}

// UpdateOpportunityRequest is a partial update. A stage change requires Reason
// and is performed as a full stage transition.
type UpdateOpportunityRequest struct {
	AccountID   *uuid.UUID        `json:"accountId,omitempty"`
	ContactID   *uuid.UUID        `json:"contactId,omitempty"`
	Name        *string           `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string           `json:"description,omitempty"`
	Stage       *OpportunityStage `json:"stage,omitempty"`
	Reason      string            `json:"reason,omitempty"`
	Probability *int              `json:"probability,omitempty" validate:"omitempty,min=0,max=100"`
	Value       *float64          `json:"value,omitempty" validate:"omitempty,gte=0"`
	GrossProfit *float64          `json:"grossProfit,omitempty"`
	CloseDate   *string           `json:"closeDate,omitempty"`
	LeadSource  *string           `json:"leadSource,omitempty" validate:"omitempty,max=100"`
	OwnerID     *uuid.UUID        `json:"ownerId,omitempty"`
	ChangedBy   *uuid.UUID        `json:"changedBy,omitempty"`
}

type TransitionStageRequest struct {
	Stage       OpportunityStage `json:"stage" validate:"required"`
	Reason      string           `json:"reason"`
	Probability *int             `json:"probability,omitempty" validate:"omitempty,min=0,max=100"`
	ChangedBy   *uuid.UUID       `json:"changedBy,omitempty"`
}

// Order request DTOs

// OrderItemInput is one priced line. ProposalValue defaults to the product price.
type OrderItemInput struct {
	ProductID     uuid.UUID `json:"productId" validate:"required"`
	Quantity      int       `json:"quantity"`
	CostValue     float64   `json:"costValue"`
	ProposalValue *float64  `json:"proposalValue,omitempty"`
	Discount      float64   `json:"discount"`
	StartDate     string    `json:"startDate,omitempty"`
	EndDate       string    `json:"endDate,omitempty"`
}

type CreateOrderRequest struct {
	OpportunityID uuid.UUID        `json:"opportunityId" validate:"required"`
	Status        OrderStatus      `json:"status,omitempty" validate:"omitempty,oneof=draft pending confirmed shipped delivered cancelled"`
	OrderDate     string           `json:"orderDate,omitempty"`
	Items         []OrderItemInput `json:"items,omitempty" validate:"dive"`
}

type UpdateOrderRequest struct {
	Status    *OrderStatus `json:"status,omitempty" validate:"omitempty,oneof=draft pending confirmed shipped delivered cancelled"`
	OrderDate *string      `json:"orderDate,omitempty"`
}

type CreateOrderItemRequest struct {
	OrderID uuid.UUID `json:"orderId" validate:"required"`
	OrderItemInput
}

// UpdateOrderItemRequest is a partial update. An empty date string clears the date.
type UpdateOrderItemRequest struct {
	ProductID     *uuid.UUID `json:"productId,omitempty"`
	Quantity      *int       `json:"quantity,omitempty"`
	CostValue     *float64   `json:"costValue,omitempty"`
	ProposalValue *float64   `json:"proposalValue,omitempty"`
	Discount      *float64   `json:"discount,omitempty"`
	StartDate     *string    `json:"startDate,omitempty"`
	EndDate       *string    `json:"endDate,omitempty"`
}

// Activity request DTOs
type CreateActivityRequest struct {
	Type          ActivityType `json:"type" validate:"required,oneof=call email meeting task note stage_change"`
	Subject       string       `json:"subject" validate:"required,max=300"`
	Description   string       `json:"description,omitempty"`
	OpportunityID *uuid.UUID   `json:"opportunityId,omitempty"`
	LeadID        *uuid.UUID   `json:"leadId,omitempty"`
	AccountID     *uuid.UUID   `json:"accountId,omitempty"`
	ContactID     *uuid.UUID   `json:"contactId,omitempty"`
	DueDate       string       `json:"dueDate,omitempty"`
	Completed     bool         `json:"completed,omitempty"`
	CreatedBy     *uuid.UUID   `json:"createdBy,omitempty"`
}

// Note request DTOs
type CreateNoteRequest struct {
	Content       string     `json:"content" validate:"required"`
	LeadID        *uuid.UUID `json:"leadId,omitempty"`
	OpportunityID *uuid.UUID `json:"opportunityId,omitempty"`
	AccountID     *uuid.UUID `json:"accountId,omitempty"`
	ContactID     *uuid.UUID `json:"contactId,omitempty"`
	CreatedBy     *uuid.UUID `json:"createdBy,omitempty"`
}

type UpdateNoteRequest struct {
	Content *string `json:"content,omitempty" validate:"omitempty,min=1"`
}
