package domain

import (
	"time"
)

// AssetStatus represents the availability status of an asset
type AssetStatus string

const (
	AssetStatusAvailable   AssetStatus = "AVAILABLE"
	AssetStatusInUse       AssetStatus = "IN_USE"
	AssetStatusMaintenance AssetStatus = "MAINTENANCE"
	AssetStatusRetired     AssetStatus = "RETIRED"
	AssetStatusLost        AssetStatus = "LOST"
)

// AssetCategory represents the category of an asset
type AssetCategory string

const (
	AssetCategoryITEquipment     AssetCategory = "IT_EQUIPMENT"
	AssetCategoryVehicle         AssetCategory = "VEHICLE"
	AssetCategoryOfficeFurniture AssetCategory = "OFFICE_FURNITURE"
	AssetCategoryBuildingInfra   AssetCategory = "BUILDING_INFRA"
	AssetCategoryMachinery       AssetCategory = "MACHINERY"
	AssetCategoryOther           AssetCategory = "OTHER"
)

// AssetCondition represents the physical condition of an asset
type AssetCondition string

const (
	AssetConditionNew     AssetCondition = "NEW"
	AssetConditionGood    AssetCondition = "GOOD"
	AssetConditionFair    AssetCondition = "FAIR"
	AssetConditionPoor    AssetCondition = "POOR"
	AssetConditionDamaged AssetCondition = "DAMAGED"
	AssetConditionScrap   AssetCondition = "SCRAP"
)

// EventType represents the kind of change recorded in the asset audit trail
type EventType string

const (
	EventTypeStatusChange    EventType = "STATUS_CHANGE"
	EventTypeConditionChange EventType = "CONDITION_CHANGE"
	EventTypeAssignment      EventType = "ASSIGNMENT"
	EventTypeCheckout        EventType = "CHECKOUT"
	EventTypeCheckin         EventType = "CHECKIN"
)

// IssueType represents the kind of reported asset issue
type IssueType string

const (
	IssueTypeBreakdown   IssueType = "BREAKDOWN"
	IssueTypeDamage      IssueType = "DAMAGE"
	IssueTypeMalfunction IssueType = "MALFUNCTION"
	IssueTypeOther       IssueType = "OTHER"
)

// Asset is the read-only view of an asset record used by analytics
type Asset struct {
	ID               string         `json:"$id"`
	Name             string         `json:"name"`
	Category         AssetCategory  `json:"category"`
	Department       string         `json:"department"`
	PurchasePrice    float64        `json:"purchasePrice"`
	PurchaseDate     *time.Time     `json:"purchaseDate,omitempty"`
	AvailableStatus  AssetStatus    `json:"availableStatus"`
	CurrentCondition AssetCondition `json:"currentCondition"`
	LastUsedAt       *time.Time     `json:"lastUsedAt,omitempty"`
	CreatedAt        time.Time      `json:"$createdAt"`
}

// AgeYears returns the number of whole years since purchase, or 0 when the
// purchase date is unknown or in the future.
func (a *Asset) AgeYears(now time.Time) int {
	if a.PurchaseDate == nil {
		return 0
	}
	return WholeYearsBetween(*a.PurchaseDate, now)
}

// AssetEvent is an append-only audit trail entry
type AssetEvent struct {
	ID        string    `json:"$id"`
	AssetID   string    `json:"assetId"`
	EventType EventType `json:"eventType"`
	FromValue string    `json:"fromValue"`
	ToValue   string    `json:"toValue"`
	At        time.Time `json:"at"`
}

// IsStatusChange reports whether the event records an availability status transition
func (e *AssetEvent) IsStatusChange() bool {
	return e.EventType == EventTypeStatusChange
}

// InUseDelta returns +1 when the event moves an asset into IN_USE, -1 when it
// moves one out of IN_USE, and 0 otherwise.
func (e *AssetEvent) InUseDelta() int {
	if !e.IsStatusChange() {
		return 0
	}
	delta := 0
	if e.FromValue == string(AssetStatusInUse) {
		delta--
	}
	if e.ToValue == string(AssetStatusInUse) {
		delta++
	}
	return delta
}

// IsMaintenance reports whether the event moves an asset into maintenance
func (e *AssetEvent) IsMaintenance() bool {
	return e.IsStatusChange() && e.ToValue == string(AssetStatusMaintenance)
}

// AssetIssue is a reported problem with an asset. ResolvedAt is nil while open.
type AssetIssue struct {
	ID         string     `json:"$id"`
	AssetID    string     `json:"assetId"`
	IssueType  IssueType  `json:"issueType"`
	ReportedAt time.Time  `json:"reportedAt"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`
}

// IsResolved reports whether the issue has a resolution timestamp
func (i *AssetIssue) IsResolved() bool {
	return i.ResolvedAt != nil
}

// ResolutionTime returns the time between report and resolution
func (i *AssetIssue) ResolutionTime() time.Duration {
	if i.ResolvedAt == nil {
		return 0
	}
	return i.ResolvedAt.Sub(i.ReportedAt)
}

// DepreciationRate returns the annual declining-balance rate for a category
func DepreciationRate(category AssetCategory) float64 {
	switch category {
	case AssetCategoryITEquipment:
		return 0.33
	case AssetCategoryVehicle:
		return 0.20
	case AssetCategoryOfficeFurniture:
		return 0.10
	case AssetCategoryBuildingInfra:
		return 0.05
	default:
		return 0.15
	}
}

// ExpectedLifespan returns the expected service life in years for a category
func ExpectedLifespan(category AssetCategory) float64 {
	switch category {
	case AssetCategoryITEquipment:
		return 4
	case AssetCategoryVehicle:
		return 8
	case AssetCategoryOfficeFurniture:
		return 10
	case AssetCategoryBuildingInfra:
		return 25
	case AssetCategoryMachinery:
		return 12
	default:
		return 7
	}
}

// ConditionFactor scales remaining life by the asset's current condition
func ConditionFactor(condition AssetCondition) float64 {
	switch condition {
	case AssetConditionNew:
		return 1.2
	case AssetConditionGood:
		return 1.0
	case AssetConditionFair:
		return 0.7
	case AssetConditionPoor:
		return 0.4
	case AssetConditionDamaged:
		return 0.2
	case AssetConditionScrap:
		return 0.1
	default:
		return 0.7
	}
}

// WholeYearsBetween returns the number of complete calendar years from start to end
func WholeYearsBetween(start, end time.Time) int {
	if !end.After(start) {
		return 0
	}
	start = start.UTC()
	end = end.UTC()
	years := end.Year() - start.Year()
	anniversary := start.AddDate(years, 0, 0)
	if anniversary.After(end) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}
