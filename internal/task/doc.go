// Package task описывает задачу — именованную единицу работы.
//
// Задача хранит вложения (crawler + целевой путь), опции и metadata.
// Рабочая процедура задачи (Performer) получает вложения и возвращает
// результаты. Задачи создаются по имени через реестр; конкретные
// реализации находятся в пакете tasks.
package task
