package workflow

import (
	"github.com/BaSui01/onboardflow/types"
)

// Draft 正在填写的员工记录及其字段级校验错误，只属于一个工作流
type Draft struct {
	Record types.PartialRecord
	Errors map[types.Field]error
	// Source 草稿来源：manual、upload 或 paste
	Source string
	// Row 上传文件中的数据行号，手工录入时为 0
	Row int
}

func newDraft(source string) *Draft {
	return &Draft{Source: source, Errors: make(map[types.Field]error)}
}

// setError 记录字段错误；err 为 nil 时清除
func (d *Draft) setError(f types.Field, err error) {
	if err == nil {
		delete(d.Errors, f)
		return
	}
	d.Errors[f] = err
}

// View 草稿的只读快照
func (d *Draft) View(required []types.Field) *DraftView {
	if d == nil {
		return nil
	}
	v := &DraftView{
		Record:  d.Record.Clone(),
		Missing: d.Record.Missing(required),
		Source:  d.Source,
		Row:     d.Row,
	}
	if len(d.Errors) > 0 {
		v.Errors = make(map[types.Field]string, len(d.Errors))
		for f, err := range d.Errors {
			v.Errors[f] = err.Error()
		}
	}
	return v
}

// DraftView 对外展示的草稿
type DraftView struct {
	Record  types.PartialRecord    `json:"record"`
	Errors  map[types.Field]string `json:"errors,omitempty"`
	Missing []types.Field          `json:"missing,omitempty"`
	Source  string                 `json:"source,omitempty"`
	Row     int                    `json:"row,omitempty"`
}

// pendingRow 批量上传中等待审核的后续行
type pendingRow struct {
	row    int
	record types.PartialRecord
	errs   map[types.Field]error
}

func (p pendingRow) draft() *Draft {
	d := newDraft(sourceUpload)
	d.Row = p.row
	d.Record = p.record
	for f, err := range p.errs {
		d.Errors[f] = err
	}
	return d
}

const (
	sourceManual = "manual"
	sourceUpload = "upload"
	sourcePaste  = "paste"
)
