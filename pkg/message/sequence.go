package message

// SequenceID 消息关联序号
//
// 最高位（bit 63）为 1 表示这是对先前请求的响应，
// 低 63 位为请求关联 ID。0 表示非关联（异步）消息。
type SequenceID uint64

// RequestID 请求关联 ID（低 63 位）
type RequestID uint64

const (
	// ResponseBit 响应标记位
	ResponseBit SequenceID = 1 << 63
	// RequestIDMask 请求 ID 掩码
	RequestIDMask SequenceID = ResponseBit - 1
)

// Request 创建请求序号
func Request(id RequestID) SequenceID {
	return SequenceID(id) & RequestIDMask
}

// Response 创建响应序号
func Response(id RequestID) SequenceID {
	return (SequenceID(id) & RequestIDMask) | ResponseBit
}

// IsCorrelated 是否为关联（同步）消息
func (s SequenceID) IsCorrelated() bool {
	return s != 0
}

// IsResponse 是否为响应消息
func (s SequenceID) IsResponse() bool {
	return s&ResponseBit != 0
}

// IsRequest 是否为等待响应的请求消息
func (s SequenceID) IsRequest() bool {
	return s != 0 && s&ResponseBit == 0
}

// RequestID 返回低 63 位的请求 ID
func (s SequenceID) RequestID() RequestID {
	return RequestID(s & RequestIDMask)
}

// IsResponseTo 是否为指定请求的响应
func (s SequenceID) IsResponseTo(id RequestID) bool {
	return s.IsResponse() && s.RequestID() == id
}
