package mockdata

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/shivamuserology/bulk-change/internal/model"
)

// EmployeeCount 演示数据集规模
const EmployeeCount = 55

const managerCount = 10

var (
	firstNames  = []string{"James", "Mary", "John", "Patricia", "Robert", "Jennifer", "Michael", "Linda", "William", "Elizabeth", "David", "Barbara", "Richard", "Susan", "Joseph", "Jessica", "Thomas", "Sarah", "Charles", "Karen", "Christopher", "Nancy", "Daniel", "Lisa", "Matthew", "Betty", "Anthony", "Margaret", "Mark", "Sandra", "Donald", "Ashley", "Steven", "Kimberly", "Paul", "Emily", "Andrew", "Donna", "Joshua", "Michelle", "Kenneth", "Dorothy", "Kevin", "Carol", "Brian", "Amanda", "George", "Melissa", "Edward", "Deborah", "Ronald", "Stephanie", "Timothy", "Rebecca", "Jason"}
	lastNames   = []string{"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis", "Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez", "Wilson", "Anderson", "Thomas", "Taylor", "Moore", "Jackson", "Martin", "Lee", "Perez", "Thompson", "White", "Harris", "Sanchez", "Clark", "Ramirez", "Lewis", "Robinson", "Walker", "Young", "Allen", "King", "Wright", "Scott", "Torres", "Nguyen", "Hill", "Flores", "Green", "Adams", "Nelson", "Baker", "Hall", "Rivera", "Campbell", "Mitchell", "Carter", "Roberts", "Chen", "Kim", "Patel", "Shah", "Kumar"}
	departments = []string{"Engineering", "Sales", "Marketing", "HR", "Finance", "Product", "Customer Support", "Operations"}
	teams       = []string{"Core", "Platform", "Growth", "Enterprise", "SMB", "Infrastructure"}
	titles      = []string{"Software Engineer", "Senior Software Engineer", "Staff Engineer", "Engineering Manager", "Product Manager", "Senior Product Manager", "Sales Representative", "Account Executive", "Marketing Specialist", "HR Generalist", "Financial Analyst", "Customer Support Specialist", "Operations Manager", "Data Analyst", "Designer", "Senior Designer"}
	locations   = []string{"San Francisco", "New York", "Austin", "Seattle", "London", "Remote"}
	workAuth    = []string{"Citizen", "Permanent Resident", "H1B", "L1", "F1-OPT"}
	countries   = []string{"United States", "Canada", "United Kingdom", "Germany", "India"}
	homeCities  = []string{"San Francisco", "New York", "Austin", "Seattle", "Denver", "Chicago", "Boston", "Los Angeles"}
	homeStates  = []string{"CA", "NY", "TX", "WA", "CO", "IL", "MA"}
	streets     = []string{"Main", "Oak", "Maple", "Cedar", "Pine", "Elm"}
	suffixes    = []string{"St", "Ave", "Blvd", "Dr", "Ln"}
	relations   = []string{"Spouse", "Parent", "Sibling", "Friend"}
	tfaMethods  = []string{"Authenticator App", "SMS", "Hardware Key"}
	tfaDevices  = []string{"iPhone", "Android", "YubiKey", "Google Authenticator"}
)

type generator struct {
	rnd *rand.Rand
}

func (g *generator) item(items []string) string {
	return items[g.rnd.IntN(len(items))]
}

func (g *generator) phone() string {
	return fmt.Sprintf("+1-%d-%d-%d", g.rnd.IntN(900)+100, g.rnd.IntN(900)+100, g.rnd.IntN(9000)+1000)
}

func (g *generator) date(startYear, endYear int) string {
	year := g.rnd.IntN(endYear-startYear+1) + startYear
	month := g.rnd.IntN(12) + 1
	day := g.rnd.IntN(28) + 1
	return fmt.Sprintf("%d-%02d-%02d", year, month, day)
}

// EmployeeID 第 n 个员工（从 1 开始）的编号
func EmployeeID(n int) string {
	return fmt.Sprintf("EMP%04d", n)
}

// GenerateEmployees 生成固定种子的演示员工数据；同一 seed 结果完全一致
func GenerateEmployees(seed uint64, now time.Time) []model.Employee {
	g := &generator{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
	employees := make([]model.Employee, 0, EmployeeCount)

	for i := 0; i < EmployeeCount; i++ {
		first := firstNames[i%len(firstNames)]
		last := lastNames[i%len(lastNames)]
		dept := departments[i%len(departments)]
		id := EmployeeID(i + 1)
		handle := strings.ToLower(first) + "." + strings.ToLower(last)
		addr := fmt.Sprintf("%d %s %s", g.rnd.IntN(9999)+1, g.item(streets), g.item(suffixes))

		emp := model.Employee{
			ID:              id,
			Department:      dept,
			Team:            g.item(teams),
			Compensation:    float64(g.rnd.IntN(150000) + 60000),
			CompensationPer: "Year",
			TargetBonus:     float64(g.rnd.IntN(30000)),
			Equity:          float64(g.rnd.IntN(5000)),
			WorkEmail:       handle + "@rippling.com",
			WorkLocation:    g.item(locations),

			LegalFirstName:   first,
			LegalLastName:    last,
			PreferredName:    first,
			DateOfBirth:      g.date(1965, 2000),
			HomeAddressLine1: addr,
			HomeCity:         g.item(homeCities),
			HomeState:        g.item(homeStates),
			HomeZip:          fmt.Sprintf("%d", g.rnd.IntN(90000)+10000),
			HomeCountry:      "United States",
			PersonalEmail:    handle + "@gmail.com",
			PersonalPhone:    g.phone(),

			EmergencyContactName:         g.item(firstNames) + " " + last,
			EmergencyContactRelationship: g.item(relations),
			EmergencyContactPhone:        g.phone(),
			EmployeeID:                   id,
			NationalID:                   fmt.Sprintf("***-**-%d", g.rnd.IntN(9000)+1000),
			WorkAuthorization:            g.item(workAuth),
			Citizenship:                  g.item(countries),

			SlackStatus:           "Active",
			SlackEmail:            handle + "@rippling.com",
			GoogleWorkspaceStatus: "Active",
			GoogleWorkspaceEmail:  handle + "@rippling.com",
			GithubStatus:          "Pending",

			TwoFactorMethod:      g.item(tfaMethods),
			TwoFactorDeviceLabel: g.item(tfaDevices),
			TwoFactorStatus:      "Active",

			DirectReports: []model.DirectReport{},
			Documents: []model.Document{
				{Name: "Offer Letter", Type: "Employment", Status: "Signed", Date: g.date(2020, 2024)},
				{Name: "W-4", Type: "Tax", Status: "Signed", Date: g.date(2020, 2024)},
				{Name: "I-9", Type: "Compliance", Status: "Signed", Date: g.date(2020, 2024)},
			},
			Status:   "Active",
			HireDate: g.date(2018, 2024),
		}

		if i < managerCount {
			emp.Title = dept + " Manager"
		} else {
			emp.Title = g.item(titles)
			mgr := i % managerCount
			emp.Manager = EmployeeID(mgr + 1)
			emp.ManagerName = firstNames[mgr] + " " + lastNames[mgr]
		}
		if g.rnd.Float64() > 0.7 {
			emp.PreferredName = g.item(firstNames)
		}
		if g.rnd.Float64() > 0.7 {
			emp.HomeAddressLine2 = fmt.Sprintf("Apt %d", g.rnd.IntN(500)+1)
		}
		if dept == "Engineering" {
			emp.GithubStatus = "Active"
			emp.GithubUsername = strings.ToLower(first) + strings.ToLower(last)
		}

		employees = append(employees, emp)
	}

	injectEdgeCases(employees, now)
	computeDirectReports(employees)
	return employees
}

// injectEdgeCases EMP0047..EMP0055 为固定的边界用例
func injectEdgeCases(employees []model.Employee, now time.Time) {
	if len(employees) < EmployeeCount {
		return
	}

	e := &employees[46]
	e.Manager = e.ID
	e.ManagerName = e.FullName()
	e.EdgeCase = model.EdgeCircularManager

	employees[47].WorkEmail = "invalid-email-format"
	employees[47].EdgeCase = model.EdgeInvalidEmail

	employees[48].Compensation = 500000
	employees[48].EdgeCase = model.EdgeSalaryOutOfBand

	employees[49].Status = "Pending Termination"
	employees[49].EdgeCase = model.EdgePendingTermination

	employees[50].EdgeCase = model.EdgeBlockedField

	employees[51].EdgeCase = model.EdgeTPAConflict
	employees[51].SlackStatus = "Sync Error"

	employees[52].EdgeCase = model.EdgeBenefitsTrigger
	employees[52].Compensation = 149999

	modified := now.UTC()
	employees[53].EdgeCase = model.EdgeConcurrentEdit
	employees[53].LastModified = &modified

	employees[54].Status = "On Leave"
	employees[54].EdgeCase = model.EdgeOnLeave
}

// computeDirectReports 按 manager 引用反向填充直属下级；自引用同样记录，交由校验发现
func computeDirectReports(employees []model.Employee) {
	pos := make(map[string]int, len(employees))
	for i, e := range employees {
		pos[e.ID] = i
	}
	for _, e := range employees {
		if e.Manager == "" {
			continue
		}
		mi, ok := pos[e.Manager]
		if !ok {
			continue
		}
		employees[mi].DirectReports = append(employees[mi].DirectReports, model.DirectReport{
			ID:         e.ID,
			Name:       e.FullName(),
			Title:      e.Title,
			Department: e.Department,
		})
	}
}
