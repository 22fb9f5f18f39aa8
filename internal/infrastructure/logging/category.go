package logging

type Category string
type SubCategory string
type ExtraKey string

const (
	General         Category = "General"
	Internal        Category = "Internal"
	RabbitMQ        Category = "RabbitMQ"
	Validation      Category = "Validation"
	RequestResponse Category = "RequestResponse"
	Relay           Category = "Relay"
	Stream          Category = "Stream"
)

const (
	// General
	Startup         SubCategory = "Startup"
	Shutdown        SubCategory = "Shutdown"
	RateLimiting    SubCategory = "RateLimiting"
	ExternalService SubCategory = "ExternalService"

	// Relay
	CreateRoom  SubCategory = "CreateRoom"
	JoinRoom    SubCategory = "JoinRoom"
	SendMessage SubCategory = "SendMessage"

	// Stream
	Subscribe   SubCategory = "Subscribe"
	Unsubscribe SubCategory = "Unsubscribe"
	Delivery    SubCategory = "Delivery"

	// RabbitMQ
	Publish SubCategory = "Publish"
)

const (
	AppName      ExtraKey = "AppName"
	LoggerName   ExtraKey = "Logger"
	ClientIp     ExtraKey = "ClientIp"
	Method       ExtraKey = "Method"
	StatusCode   ExtraKey = "StatusCode"
	BodySize     ExtraKey = "BodySize"
	Path         ExtraKey = "Path"
	Latency      ExtraKey = "Latency"
	ErrorMessage ExtraKey = "ErrorMessage"
	RoomID       ExtraKey = "RoomId"
	Side         ExtraKey = "Side"
	MessageID    ExtraKey = "MessageId"
	Transport    ExtraKey = "Transport"
)
