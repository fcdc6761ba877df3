package builder

import "github.com/freedkr/orgchart/internal/model"

// 测试数据使用的列名
const (
	SampleColumnPosition = "Position"
	SampleColumnManager  = "Manager"
	SampleColumnName     = "Name"
	SampleColumnDept     = "Dept"
	SampleColumnType     = "Type"
)

// SampleColumns 测试数据的列集合
var SampleColumns = model.NewColumnSet(
	SampleColumnPosition, SampleColumnManager, SampleColumnName, SampleColumnDept, SampleColumnType,
)

// SampleRecords 测试用的组织数据
// CEO -> [CTO -> [Eng Manager -> [Engineer, QA], Architect], CFO -> [Accountant]]
var SampleRecords = []model.Record{
	{"Position": "CEO", "Manager": "", "Name": "Alice", "Dept": "Executive", "Type": "Full-time"},
	{"Position": "CTO", "Manager": "CEO", "Name": "Bob", "Dept": "Engineering", "Type": "Full-time"},
	{"Position": "CFO", "Manager": "CEO", "Name": "Carol", "Dept": "Finance", "Type": "Full-time"},
	{"Position": "Eng Manager", "Manager": "CTO", "Name": "Dan", "Dept": "Engineering", "Type": "Full-time"},
	{"Position": "Engineer", "Manager": "Eng Manager", "Name": "Erin", "Dept": "Engineering", "Type": "Contractor"},
	{"Position": "QA", "Manager": "Eng Manager", "Name": "Frank", "Dept": "Engineering", "Type": "Intern"},
	{"Position": "Architect", "Manager": " CTO ", "Name": "Grace", "Dept": "Engineering", "Type": "Contractor"},
	{"Position": "Accountant", "Manager": "CFO", "Name": "Heidi", "Dept": "Finance", "Type": ""},
}

// SampleForestRecords 两个独立的顶层节点
var SampleForestRecords = []model.Record{
	{"Position": "Board Chair", "Manager": ""},
	{"Position": "CEO", "Manager": ""},
	{"Position": "COO", "Manager": "CEO"},
}

// SampleAnomalyRecords 包含空职位、自引用、悬空上级、重复职位和环
var SampleAnomalyRecords = []model.Record{
	{"Position": "Founder", "Manager": "Founder", "Dept": "Exec"},
	{"Position": "  ", "Manager": "Founder", "Dept": "Dropped"},
	{"Position": "Sales", "Manager": "GHOST", "Dept": "Sales"},
	{"Position": "A", "Manager": "B", "Dept": "Loop"},
	{"Position": "B", "Manager": "A", "Dept": "Loop"},
	{"Position": "Sales", "Manager": "Founder", "Dept": "Sales v2"},
}
