package handler

import (
	"storefront/internal/usecase"
)

var (
	userHandler     *UserHandler
	categoryHandler *CategoryHandler
	productHandler  *ProductHandler
	orderHandler    *OrderHandler
	adminHandler    *AdminHandler
)

func Setup(
	userUseCase *usecase.UserUseCase,
	categoryUseCase *usecase.CategoryUseCase,
	productUseCase *usecase.ProductUseCase,
	orderUseCase *usecase.OrderUseCase,
	statsUseCase *usecase.StatsUseCase,
) {
	userHandler = NewUserHandler(userUseCase)
	categoryHandler = NewCategoryHandler(categoryUseCase)
	productHandler = NewProductHandler(productUseCase)
	orderHandler = NewOrderHandler(orderUseCase)
	adminHandler = NewAdminHandler(statsUseCase)
}

func GetUserHandler() *UserHandler {
	return userHandler
}

func GetCategoryHandler() *CategoryHandler {
	return categoryHandler
}

func GetProductHandler() *ProductHandler {
	return productHandler
}

func GetOrderHandler() *OrderHandler {
	return orderHandler
}

func GetAdminHandler() *AdminHandler {
	return adminHandler
}
