package mapper

import (
	"time"

	"github.com/pipelinecrm/crm-api/internal/domain"
)

const timestampLayout = "2006-01-02T15:04:05Z"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(domain.DateLayout)
	return &s
}

// ToUserDTO converts User to UserDTO
func ToUserDTO(user *domain.User) domain.UserDTO {
	return domain.UserDTO{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: formatTimestamp(user.CreatedAt),
	}
}

// ToAccountDTO converts Account to AccountDTO
func ToAccountDTO(account *domain.Account) domain.AccountDTO {
	return domain.AccountDTO{
		ID:        account.ID,
		Name:      account.Name,
		Industry:  account.Industry,
		Website:   account.Website,
		Phone:     account.Phone,
		Email:     account.Email,
		Address:   account.Address,
		City:      account.City,
		Country:   account.Country,
		OwnerID:   account.OwnerID,
		CreatedAt: formatTimestamp(account.CreatedAt),
		UpdatedAt: formatTimestamp(account.UpdatedAt),
	}
}

// ToContactDTO converts Contact to ContactDTO
func ToContactDTO(contact *domain.Contact) domain.ContactDTO {
	dto := domain.ContactDTO{
		ID:        contact.ID,
		AccountID: contact.AccountID,
		FirstName: contact.FirstName,
		LastName:  contact.LastName,
		FullName:  contact.FullName(),
		Email:     contact.Email,
		Phone:     contact.Phone,
		Title:     contact.Title,
		OwnerID:   contact.OwnerID,
		CreatedAt: formatTimestamp(contact.CreatedAt),
		UpdatedAt: formatTimestamp(contact.UpdatedAt),
	}
	if contact.Account != nil {
		dto.AccountName = contact.Account.Name
	}
	return dto
}

// ToLeadDTO converts Lead to LeadDTO
func ToLeadDTO(lead *domain.Lead) domain.LeadDTO {
	return domain.LeadDTO{
		ID:        lead.ID,
		FirstName: lead.FirstName,
		LastName:  lead.LastName,
		Email:     lead.Email,
		Phone:     lead.Phone,
		Company:   lead.Company,
		Title:     lead.Title,
		Source:    lead.Source,
		Status:    lead.Status,
		OwnerID:   lead.OwnerID,
		CreatedAt: formatTimestamp(lead.CreatedAt),
		UpdatedAt: formatTimestamp(lead.UpdatedAt),
	}
}

// ToProductDTO converts Product to ProductDTO
func ToProductDTO(product *domain.Product) domain.ProductDTO {
	return domain.ProductDTO{
		ID:          product.ID,
		Name:        product.Name,
		Type:        product.Type,
		Price:       product.Price,
		Description: product.Description,
		IsActive:    product.IsActive,
		CreatedAt:   formatTimestamp(product.CreatedAt),
		UpdatedAt:   formatTimestamp(product.UpdatedAt),
	}
}

// ToOpportunityDTO converts Opportunity to OpportunityDTO. Weighted value is
// derived here from the stored value and probability.
func ToOpportunityDTO(opp *domain.Opportunity) domain.OpportunityDTO {
	return domain.OpportunityDTO{
		ID:                opp.ID,
		AccountID:         opp.AccountID,
		ContactID:         opp.ContactID,
		LeadID:            opp.LeadID,
		Name:              opp.Name,
		Description:       opp.Description,
		Stage:             opp.Stage,
		StageOrder:        opp.Stage.DisplayOrder(),
		IsClosed:          opp.IsClosed(),
		Probability:       opp.Probability,
		Value:             opp.Value,
		GrossProfit:       opp.GrossProfit,
		GrossProfitMargin: opp.GrossProfitMargin,
		WeightedValue:     domain.WeightedValue(opp.Value, opp.Probability),
		CloseDate:         formatDate(opp.CloseDate),
		LeadSource:        opp.LeadSource,
		OwnerID:           opp.OwnerID,
		CreatedAt:         formatTimestamp(opp.CreatedAt),
		UpdatedAt:         formatTimestamp(opp.UpdatedAt),
	}
}

// ToOpportunityWithRelationsDTO converts a fully preloaded opportunity
func ToOpportunityWithRelationsDTO(opp *domain.Opportunity, activities []domain.Activity) domain.OpportunityWithRelationsDTO {
	dto := domain.OpportunityWithRelationsDTO{
		OpportunityDTO: ToOpportunityDTO(opp),
		Orders:         make([]domain.OrderDTO, len(opp.Orders)),
		StageLogs:      make([]domain.StageChangeLogDTO, len(opp.StageLogs)),
		Activities:     make([]domain.ActivityDTO, len(activities)),
	}
	if opp.Account != nil {
		account := ToAccountDTO(opp.Account)
		dto.Account = &account
	}
	if opp.Contact != nil {
		contact := ToContactDTO(opp.Contact)
		dto.Contact = &contact
	}
	if opp.Owner != nil {
		owner := ToUserDTO(opp.Owner)
		dto.Owner = &owner
	}
	for i := range opp.Orders {
		dto.Orders[i] = ToOrderDTO(&opp.Orders[i])
	}
	for i := range opp.StageLogs {
		dto.StageLogs[i] = ToStageChangeLogDTO(&opp.StageLogs[i])
	}
	for i := range activities {
		dto.Activities[i] = ToActivityDTO(&activities[i])
	}
	return dto
}

// ToOrderDTO converts Order to OrderDTO including its items
func ToOrderDTO(order *domain.Order) domain.OrderDTO {
	items := make([]domain.OrderItemDTO, len(order.Items))
	for i := range order.Items {
		items[i] = ToOrderItemDTO(&order.Items[i])
	}
	return domain.OrderDTO{
		ID:            order.ID,
		OpportunityID: order.OpportunityID,
		OrderNumber:   order.OrderNumber,
		TotalAmount:   order.TotalAmount,
		Status:        order.Status,
		OrderDate:     order.OrderDate.Format(domain.DateLayout),
		Items:         items,
		CreatedAt:     formatTimestamp(order.CreatedAt),
		UpdatedAt:     formatTimestamp(order.UpdatedAt),
	}
}

// ToOrderItemDTO converts OrderItem to OrderItemDTO
func ToOrderItemDTO(item *domain.OrderItem) domain.OrderItemDTO {
	dto := domain.OrderItemDTO{
		ID:            item.ID,
		OrderID:       item.OrderID,
		ProductID:     item.ProductID,
		Quantity:      item.Quantity,
		CostValue:     item.CostValue,
		ProposalValue: item.ProposalValue,
		Discount:      item.Discount,
		StartDate:     formatDate(item.StartDate),
		EndDate:       formatDate(item.EndDate),
		TotalCost:     item.TotalCost,
		TotalProposal: item.TotalProposal,
	}
	if item.Product != nil {
		product := ToProductDTO(item.Product)
		dto.Product = &product
	}
	return dto
}

// ToStageChangeLogDTO converts StageChangeLog to StageChangeLogDTO
func ToStageChangeLogDTO(log *domain.StageChangeLog) domain.StageChangeLogDTO {
	dto := domain.StageChangeLogDTO{
		ID:            log.ID,
		OpportunityID: log.OpportunityID,
		FromStage:     log.FromStage,
		ToStage:       log.ToStage,
		ChangedBy:     log.ChangedByID,
		Reason:        log.Reason,
		CreatedAt:     formatTimestamp(log.CreatedAt),
	}
	if log.ChangedBy != nil {
		user := ToUserDTO(log.ChangedBy)
		dto.User = &user
	}
	return dto
}

// ToActivityDTO converts Activity to ActivityDTO
func ToActivityDTO(activity *domain.Activity) domain.ActivityDTO {
	return domain.ActivityDTO{
		ID:            activity.ID,
		Type:          activity.Type,
		Subject:       activity.Subject,
		Description:   activity.Description,
		OpportunityID: activity.OpportunityID,
		LeadID:        activity.LeadID,
		AccountID:     activity.AccountID,
		ContactID:     activity.ContactID,
		DueDate:       formatDate(activity.DueDate),
		Completed:     activity.Completed,
		CreatedBy:     activity.CreatedByID,
		CreatedAt:     formatTimestamp(activity.CreatedAt),
	}
}

// ToNoteDTO converts Note to NoteDTO
func ToNoteDTO(note *domain.Note) domain.NoteDTO {
	return domain.NoteDTO{
		ID:            note.ID,
		Content:       note.Content,
		LeadID:        note.LeadID,
		OpportunityID: note.OpportunityID,
		AccountID:     note.AccountID,
		ContactID:     note.ContactID,
		CreatedBy:     note.CreatedByID,
		CreatedAt:     formatTimestamp(note.CreatedAt),
		UpdatedAt:     formatTimestamp(note.UpdatedAt),
	}
}
