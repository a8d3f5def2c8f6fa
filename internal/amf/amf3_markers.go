package amf

// AMF3 type markers (§4.D).
const (
	amf3Undefined byte = 0x00
	amf3Null      byte = 0x01
	amf3False     byte = 0x02
	amf3True      byte = 0x03
	amf3Integer   byte = 0x04
	amf3Double    byte = 0x05
	amf3String    byte = 0x06
	amf3XmlDoc    byte = 0x07
	amf3Date      byte = 0x08
	amf3Array     byte = 0x09
	amf3Object    byte = 0x0A
	amf3Xml       byte = 0x0B
	amf3ByteArray byte = 0x0C
)
