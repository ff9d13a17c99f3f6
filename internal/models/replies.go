package models

// Fixed user-facing replies. These go back to the chat verbatim, so they
// stay here as constants instead of being derived from Go error text.
const (
	ReplyNotUnderstood    = "ขออภัยค่ะ ไม่เข้าใจคำสั่ง กรุณาพิมพ์ เช่น \"สมชาย สั่ง มะนาว 3 ลูก ส่งโดย Grab\""
	ReplyGenericError     = "ขออภัยค่ะ ระบบขัดข้องชั่วคราว กรุณาลองใหม่อีกครั้ง"
	ReplyTranscribeFailed = "ไม่สามารถแปลงเสียงเป็นข้อความได้ กรุณาพิมพ์ข้อความแทนค่ะ"
	ReplyUnclearAudio     = "เสียงไม่ชัดเจน กรุณาพูดใหม่หรือพิมพ์ข้อความค่ะ"
)
