package message

import "fmt"

// Atom 原子常量，作为元组的标签字段
type Atom string

const (
	// AtomExit 退出信号标签
	AtomExit Atom = "EXIT"
	// AtomTimeout 超时通知标签
	AtomTimeout Atom = "TIMEOUT"
)

// Tuple 消息负载，由若干个带类型的字段组成
// 模式匹配以字段的类型和值为依据
type Tuple []any

// Of 创建元组
func Of(values ...any) Tuple {
	return Tuple(values)
}

// Len 返回字段数量
func (t Tuple) Len() int {
	return len(t)
}

// At 返回第 i 个字段，越界时返回 nil
func (t Tuple) At(i int) any {
	if i < 0 || i >= len(t) {
		return nil
	}
	return t[i]
}

// Head 返回首字段的原子标签（如果首字段是 Atom）
func (t Tuple) Head() (Atom, bool) {
	if len(t) == 0 {
		return "", false
	}
	a, ok := t[0].(Atom)
	return a, ok
}

// Is 检查首字段是否为指定原子
func (t Tuple) Is(a Atom) bool {
	head, ok := t.Head()
	return ok && head == a
}

// Signal 检查负载在结构上是否为 (Atom, uint32) 二元组
// 这一形状保留给系统生成的 EXIT / TIMEOUT 信号
func (t Tuple) Signal() (Atom, uint32, bool) {
	if len(t) != 2 {
		return "", 0, false
	}
	tag, ok := t[0].(Atom)
	if !ok {
		return "", 0, false
	}
	value, ok := t[1].(uint32)
	if !ok {
		return "", 0, false
	}
	return tag, value, true
}

// String 返回元组的可读表示
func (t Tuple) String() string {
	return fmt.Sprintf("%v", []any(t))
}

// Exit 创建退出信号 (EXIT, reason)
func Exit(reason ExitReason) Tuple {
	return Tuple{AtomExit, uint32(reason)}
}

// Timeout 创建超时通知 (TIMEOUT, id)
func Timeout(id uint32) Tuple {
	return Tuple{AtomTimeout, id}
}
