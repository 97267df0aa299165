package model

import (
	"strconv"
	"time"
)

// 边界用例标记（演示数据中故意注入）
const (
	EdgeCircularManager    = "circular_manager"
	EdgeInvalidEmail       = "invalid_email"
	EdgeSalaryOutOfBand    = "salary_out_of_band"
	EdgePendingTermination = "pending_termination"
	EdgeBlockedField       = "blocked_field"
	EdgeTPAConflict        = "tpa_conflict"
	EdgeBenefitsTrigger    = "benefits_trigger"
	EdgeConcurrentEdit     = "concurrent_edit"
	EdgeOnLeave            = "on_leave"
)

// DirectReport 直属下级（由 manager 引用反向计算，非权威数据）
type DirectReport struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Title      string `json:"title"`
	Department string `json:"department"`
}

// Document 员工文档（演示用）
type Document struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Status string `json:"status"`
	Date   string `json:"date"`
}

// Employee 员工记录
type Employee struct {
	ID string `json:"id"`

	// 雇佣信息
	Title           string  `json:"title"`
	Department      string  `json:"department"`
	Team            string  `json:"team"`
	Compensation    float64 `json:"compensation"`
	CompensationPer string  `json:"compensationPer"`
	TargetBonus     float64 `json:"targetBonus"`
	Equity          float64 `json:"equity"`
	WorkEmail       string  `json:"workEmail"`
	Manager         string  `json:"manager,omitempty"` // 空字符串表示无上级
	ManagerName     string  `json:"managerName,omitempty"`
	WorkLocation    string  `json:"workLocation"`

	// 个人信息
	LegalFirstName   string `json:"legalFirstName"`
	LegalLastName    string `json:"legalLastName"`
	PreferredName    string `json:"preferredName"`
	DateOfBirth      string `json:"dateOfBirth"`
	HomeAddressLine1 string `json:"homeAddressLine1"`
	HomeAddressLine2 string `json:"homeAddressLine2"`
	HomeCity         string `json:"homeCity"`
	HomeState        string `json:"homeState"`
	HomeZip          string `json:"homeZip"`
	HomeCountry      string `json:"homeCountry"`
	PersonalEmail    string `json:"personalEmail"`
	PersonalPhone    string `json:"personalPhone"`

	// 附加信息
	EmergencyContactName         string `json:"emergencyContactName"`
	EmergencyContactRelationship string `json:"emergencyContactRelationship"`
	EmergencyContactPhone        string `json:"emergencyContactPhone"`
	EmployeeID                   string `json:"employeeId"`
	NationalID                   string `json:"nationalId"`
	WorkAuthorization            string `json:"workAuthorization"`
	Citizenship                  string `json:"citizenship"`

	// 集成应用
	SlackStatus           string `json:"slackStatus"`
	SlackEmail            string `json:"slackEmail"`
	GoogleWorkspaceStatus string `json:"googleWorkspaceStatus"`
	GoogleWorkspaceEmail  string `json:"googleWorkspaceEmail"`
	GithubStatus          string `json:"githubStatus"`
	GithubUsername        string `json:"githubUsername"`

	// 双因素认证
	TwoFactorMethod      string `json:"twoFactorMethod"`
	TwoFactorDeviceLabel string `json:"twoFactorDeviceLabel"`
	TwoFactorStatus      string `json:"twoFactorStatus"`

	DirectReports []DirectReport `json:"directReports"`
	Documents     []Document     `json:"documents"`

	Status   string `json:"status"`
	HireDate string `json:"hireDate"`

	EdgeCase     string     `json:"_edgeCase,omitempty"`     // 演示边界用例标记
	LastModified *time.Time `json:"_lastModified,omitempty"` // 并发编辑演示
}

// FullName 法定全名
func (e *Employee) FullName() string {
	return e.LegalFirstName + " " + e.LegalLastName
}

// HasEdgeCase 是否带有边界用例标记
func (e *Employee) HasEdgeCase() bool {
	return e.EdgeCase != ""
}

// FieldValue 按字段 id 读取可编辑属性的当前值（统一为字符串）
func (e *Employee) FieldValue(fieldID string) (string, bool) {
	switch fieldID {
	case "id", "employeeId":
		return e.ID, true
	case "title":
		return e.Title, true
	case "department":
		return e.Department, true
	case "team":
		return e.Team, true
	case "compensation":
		return formatNumber(e.Compensation), true
	case "targetBonus":
		return formatNumber(e.TargetBonus), true
	case "equity":
		return formatNumber(e.Equity), true
	case "workEmail":
		return e.WorkEmail, true
	case "manager":
		return e.Manager, true
	case "managerName":
		return e.ManagerName, true
	case "workLocation":
		return e.WorkLocation, true
	case "preferredName":
		return e.PreferredName, true
	case "dateOfBirth":
		return e.DateOfBirth, true
	case "homeCity":
		return e.HomeCity, true
	case "homeState":
		return e.HomeState, true
	case "personalEmail":
		return e.PersonalEmail, true
	case "personalPhone":
		return e.PersonalPhone, true
	case "nationalId":
		return e.NationalID, true
	case "workAuthorization":
		return e.WorkAuthorization, true
	case "citizenship":
		return e.Citizenship, true
	case "status":
		return e.Status, true
	case "hireDate":
		return e.HireDate, true
	case "slackStatus":
		return e.SlackStatus, true
	case "googleWorkspaceStatus":
		return e.GoogleWorkspaceStatus, true
	case "githubStatus":
		return e.GithubStatus, true
	}
	return "", false
}

// Vars 导出为规则引擎可用的变量表
func (e *Employee) Vars() map[string]any {
	return map[string]any{
		"id":                    e.ID,
		"title":                 e.Title,
		"department":            e.Department,
		"team":                  e.Team,
		"compensation":          e.Compensation,
		"targetBonus":           e.TargetBonus,
		"equity":                e.Equity,
		"workEmail":             e.WorkEmail,
		"manager":               e.Manager,
		"workLocation":          e.WorkLocation,
		"preferredName":         e.PreferredName,
		"personalEmail":         e.PersonalEmail,
		"homeState":             e.HomeState,
		"workAuthorization":     e.WorkAuthorization,
		"citizenship":           e.Citizenship,
		"status":                e.Status,
		"hireDate":              e.HireDate,
		"slackStatus":           e.SlackStatus,
		"googleWorkspaceStatus": e.GoogleWorkspaceStatus,
		"githubStatus":          e.GithubStatus,
		"edgeCase":              e.EdgeCase,
		"recentlyModified":      e.LastModified != nil,
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
