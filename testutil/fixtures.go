package testutil

import "testing"

// StructuredPayload is an object already split into conversations and appointments.
// The second conversation row keys its id and start time with a trailing space.
const StructuredPayload = `{
  "conversations": [
    {"conversation_id": "C1", "start_time": "2024-01-31T10:00:00Z", "end_time": "2024-01-31T10:00:10Z", "user_message": "Quiero agendar una cita", "agent_message": "Claro", "sentimiento": "Positivo", "main_intent": "AGENDAR_CITA"},
    {"conversation_id ": "C1", "start_time ": "2024-01-31T10:01:00Z", "end_time": "2024-01-31T10:01:20Z", "user_message": "¿Cuánto cuesta?", "agent_message": "50.000", "sentimiento": "neutral", "main_intent": "CONSULTAR_PRECIOS"},
    {"conversation_id": "C2", "start_time": "01/02/2024 09:30:00", "end_time": "01/02/2024 09:30:45", "user_message": "Necesito hablar con una persona", "agent_message": "Le comunico", "sentimiento": "Negativo", "main_intent": "HABLAR_CON_HUMANO"}
  ],
  "appointments": [
    {"Estado": "ACTIVO", "Nombre": "Ana", "Tipo": "Consulta", "Fecha de inicio": "2024-01-31T15:00:00Z"},
    {"Estado": "CANCELADO", "Nombre ": "Luis", "Fecha de inicio": "2024-02-01T15:00:00Z"},
    {"Estado": "PENDIENTE", "Nombre": "Eva", "Fecha de inicio": "2024-02-02T15:00:00Z"}
  ]
}`

// MixedArrayPayload is a flat array with two appointments and one conversation
const MixedArrayPayload = `[
  {"Estado": "ACTIVO", "Nombre": "Ana"},
  {"conversation_id": "C9", "user_message": "Hola", "agent_message": "Hola", "start_time": "2024-01-31T08:00:00Z", "end_time": "2024-01-31T08:00:05Z"},
  {"Estado": "", "Nombre": "Luis"}
]`

// ConversationArrayPayload is a legacy flat array of conversation rows only
const ConversationArrayPayload = `[
  {"conversation_id": "L1", "user_message": "Menú", "agent_message": "Aquí está", "start_time": "2024-03-01T12:00:00Z", "end_time": "2024-03-01T12:00:30Z", "main_intent": "CONSULTAR_MENU"},
  {"conversation_id": "L1", "user_message": "Quiero una pizza", "agent_message": "Listo", "start_time": "2024-03-01T12:01:00Z", "end_time": "2024-03-01T12:01:15Z", "main_intent": "HACER_PEDIDO"}
]`

// OrdersPayload holds three comida orders, one with a formatted string price
const OrdersPayload = `{
  "orders": [
    {"cliente_telefono": "3001111111", "cliente_nombre": "Ana", "cliente_direccion": "Calle 1", "productos": "2x Pizza hawaiana, Gaseosa", "total_precio": 69000, "fecha_pedido": "2024-03-01T19:00:00Z"},
    {"cliente_telefono": "3002222222", "cliente_nombre": "Luis", "cliente_direccion": "Calle 2", "productos": "Pizza hawaiana; Limonada", "total_precio": "$ 38.000", "fecha_pedido": "2024-03-01T20:00:00Z"},
    {"cliente_telefono": "3001111111", "cliente_nombre": "Ana", "cliente_direccion": "Calle 1", "productos": "Gaseosa", "total_precio": 5000, "fecha_pedido": "2024-03-02T13:00:00Z"}
  ]
}`

// DemoPayload is a payload tagged as synthetic demo data
const DemoPayload = `{"orders": [{"cliente_telefono": "300", "productos": "Pizza", "total_precio": 1000, "fecha_pedido": "2024-03-01T19:00:00Z"}], "demo": true}`

// WritePayload writes a payload fixture into dir and returns its path
func WritePayload(t *testing.T, dir, name, body string) string {
	t.Helper()
	return WriteFile(t, dir, name, body)
}
