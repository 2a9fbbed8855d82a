package workflow

import (
	"fmt"

	"github.com/BaSui01/onboardflow/types"
)

// EventKind 聊天事件类型
type EventKind string

const (
	EventText       EventKind = "text"
	EventFileUpload EventKind = "fileUpload"
	EventFieldEdit  EventKind = "fieldEdit"
	EventConfirm    EventKind = "confirm"
	EventCancel     EventKind = "cancel"
)

// Event 一次用户输入
type Event struct {
	Kind     EventKind   `json:"kind"`
	Value    string      `json:"value,omitempty"`
	Field    types.Field `json:"field,omitempty"`
	FileName string      `json:"filename,omitempty"`
	Data     []byte      `json:"data,omitempty"`
}

func Text(v string) Event { return Event{Kind: EventText, Value: v} }

func FileUpload(name string, data []byte) Event {
	return Event{Kind: EventFileUpload, FileName: name, Data: data}
}

func FieldEdit(f types.Field, v string) Event {
	return Event{Kind: EventFieldEdit, Field: f, Value: v}
}

func Confirm() Event { return Event{Kind: EventConfirm} }
func Cancel() Event  { return Event{Kind: EventCancel} }

// Validate 检查事件结构是否完整
func (e Event) Validate() error {
	switch e.Kind {
	case EventText, EventConfirm, EventCancel:
		return nil
	case EventFileUpload:
		if len(e.Data) == 0 {
			return fmt.Errorf("fileUpload event requires data")
		}
		return nil
	case EventFieldEdit:
		if !e.Field.Valid() {
			return fmt.Errorf("fieldEdit event has unknown field %q", e.Field)
		}
		return nil
	}
	return fmt.Errorf("unknown event kind %q", e.Kind)
}

// IsCancel 是否为取消请求：cancel 事件或文本 "cancel" / "reset"
func (e Event) IsCancel() bool {
	return e.Kind == EventCancel || (e.Kind == EventText && isCancelWord(e.Value))
}
