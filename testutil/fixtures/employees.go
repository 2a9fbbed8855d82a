// =============================================================================
// 📦 测试数据工厂 - 员工记录
// =============================================================================
package fixtures

import (
	"time"

	"github.com/BaSui01/onboardflow/types"
)

// Jane 标准样例员工
func Jane() types.EmployeeRecord {
	return types.EmployeeRecord{
		Name:        "Jane Doe",
		Phone:       "5551234567",
		Designation: "Engineer",
		Salary:      85000,
		CreatedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

// John 第二个样例员工，电话与 Jane 不同
func John() types.EmployeeRecord {
	return types.EmployeeRecord{
		Name:        "John Smith",
		Phone:       "5559876543",
		Designation: "Analyst",
		Salary:      62000.5,
		CreatedAt:   time.Date(2026, 1, 3, 3, 4, 5, 0, time.UTC),
	}
}

// CompleteDraft 四个字段齐全的草稿
func CompleteDraft() types.PartialRecord {
	rec := Jane()
	return types.PartialRecord{
		Name:        types.StringPtr(rec.Name),
		Phone:       types.StringPtr(rec.Phone),
		Designation: types.StringPtr(rec.Designation),
		Salary:      types.FloatPtr(rec.Salary),
	}
}

// SpreadsheetHeader 上传文件的标准表头
func SpreadsheetHeader() []string {
	return []string{"Name", "Phone", "Designation", "Salary"}
}

// SpreadsheetRows 两行样例数据（原始格式，含分隔符与货币符号）
func SpreadsheetRows() [][]string {
	return [][]string{
		{"Jane Doe", "555-123-4567", "Engineer", "$85,000"},
		{"John Smith", "(555) 987-6543", "Analyst", "62000.50"},
	}
}
