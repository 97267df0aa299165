package importer

import (
	"github.com/shivamuserology/bulk-change/internal/model"
	"github.com/shivamuserology/bulk-change/internal/wizard"
)

// sampleEmployeeIDs 演示用员工名单，末尾两条用于展示无效 id
var sampleEmployeeIDs = []string{
	"EMP0001", "EMP0002", "EMP0003", "EMP0004", "EMP0005",
	"EMP0006", "EMP0007", "EMP0008", "EMP0009", "EMP0010",
	"EMP0011", "EMP0012", "EMP0013", "EMP0014", "EMP0015",
	"INVALID1", "INVALID2",
}

// SampleEmployeeIDs 演示用员工名单（副本）
func SampleEmployeeIDs() []string {
	out := make([]string, len(sampleEmployeeIDs))
	copy(out, sampleEmployeeIDs)
	return out
}

// SampleCompletePayload 演示用完整导入数据：5 名员工，3 个字段
func SampleCompletePayload() wizard.CompletePayload {
	return wizard.CompletePayload{
		EmployeeIDs: []string{"EMP0001", "EMP0002", "EMP0003", "EMP0004", "EMP0005"},
		Fields:      []string{"compensation", "title", "workLocation"},
		Values: map[string]model.EditSpec{
			"compensation": {Type: model.EditIncrease, Value: "5", IsPercent: true},
			"title":        {Type: model.EditSet, Value: "Senior Engineer"},
			"workLocation": {Type: model.EditSet, Value: "San Francisco"},
		},
	}
}
