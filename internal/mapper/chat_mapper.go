package mapper

import (
	"household-finance-be/internal/entity"
	"household-finance-be/internal/model"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

func (m *ChatMapper) MessageToEntity(msg *model.ChatMessage) *entity.ChatMessage {
	if msg == nil {
		return nil
	}
	return &entity.ChatMessage{
		Id:        msg.Id,
		RoomKind:  entity.RoomKind(msg.RoomKind),
		RoomId:    msg.RoomId,
		UserId:    msg.UserId,
		Text:      msg.Text,
		ParentId:  msg.ParentId,
		CreatedAt: msg.CreatedAt,
	}
}

func (m *ChatMapper) MessageToModel(msg *entity.ChatMessage) *model.ChatMessage {
	if msg == nil {
		return nil
	}
	return &model.ChatMessage{
		Id:        msg.Id,
		RoomKind:  string(msg.RoomKind),
		RoomId:    msg.RoomId,
		UserId:    msg.UserId,
		Text:      msg.Text,
		ParentId:  msg.ParentId,
		CreatedAt: msg.CreatedAt,
	}
}
